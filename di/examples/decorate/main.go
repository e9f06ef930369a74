package main

import "github.com/gocrud/inject/di"

type Mailer struct {
	From string
}

func (m *Mailer) Send(to, subject string) {
	println("mail from " + m.From + " to " + to + ": " + subject)
}

func main() {
	registry := di.NewRegistry()
	injector := di.NewInjector(registry)

	registry.Register("mailer", &Mailer{From: "noreply@example.com"})
	registry.Register("recipient", "ops@example.com")

	// Decorate 把带依赖的函数包装为零参闭包，
	// 依赖在每次调用时按名称解析
	notify := injector.Decorate(func(deps struct {
		Mailer    *Mailer
		Recipient string
	}) {
		deps.Mailer.Send(deps.Recipient, "deploy finished")
	})

	// 重复包装等价于单次包装，不会产生双重解析
	notify = injector.Decorate(notify)

	if _, err := notify(); err != nil {
		println("notify failed:", err.Error())
	}

	// 位置参数函数使用显式签名
	report := injector.DecorateWith(func(mailer *Mailer, to string) {
		mailer.Send(to, "weekly report")
	}, di.Signature{"mailer", "recipient"})

	if _, err := report(); err != nil {
		println("report failed:", err.Error())
	}
}
