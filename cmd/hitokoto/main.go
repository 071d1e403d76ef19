package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hitoshi/hitokoto/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	// .envは任意。存在しない場合は環境変数のみで起動する
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "hitokoto: %v\n", err)
		os.Exit(1)
	}
}
