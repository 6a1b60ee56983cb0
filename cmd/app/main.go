package main

import (
	"go.uber.org/fx"

	"github.com/Devensh22345/account-manage/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
