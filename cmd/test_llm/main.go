package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"smartbill/internal/config"
	"smartbill/internal/infrastructure/llm"
)

// 手动冒烟工具：直接打真实的补全接口，验证配置和网络是否通
func main() {
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	log.Println("配置加载成功")

	if conf.DeepSeek.APIKey == "" {
		log.Fatal("请在配置或环境变量中设置 deepseek.api_key")
	}
	llmClient := llm.NewDeepSeekClient(conf.DeepSeek.APIKey, conf.DeepSeek.BaseURL, conf.DeepSeek.Model)

	ctx := context.Background()

	testCases := []struct {
		Name  string
		Input string
	}{
		{
			Name:  "场景1：相对日期+多笔",
			Input: "昨天打车回家花了25块钱，今天中午吃饭花了30",
		},
		{
			Name:  "场景2：收入",
			Input: "发了3月工资5000，还收到红包200",
		},
		{
			Name:  "场景3：无日期无金额的闲聊",
			Input: "今天天气不错",
		},
	}

	for _, tc := range testCases {
		fmt.Printf("\n-------- 测试: %s --------\n", tc.Name)
		fmt.Printf("输入: %s\n", tc.Input)

		start := time.Now()
		raw, err := llmClient.Complete(ctx, []llm.Message{
			{Role: llm.RoleUser, Content: tc.Input},
		}, 0.1, 60*time.Second)
		duration := time.Since(start)

		if err != nil {
			log.Printf("❌ 调用失败: %v\n", err)
			continue
		}

		fmt.Printf("✅ 调用成功 (耗时 %v)\n", duration)
		fmt.Printf("原始返回:\n%s\n", raw)
	}
}
