package app

import (
	"fmt"
	"sort"
	"strings"
)

// Command はhitokotoバイナリのサブコマンド。
type Command string

const (
	// CommandServe はAPIサーバーと失効リストの掃除ジョブを起動する。
	CommandServe Command = "serve"
	// CommandMigrate は埋め込みマイグレーションを適用して終了する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーの /health を叩く。
	// distrolessイメージにはcurlが無いためDockerのHEALTHCHECKから使う。
	CommandHealthcheck Command = "healthcheck"
)

var knownCommands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandMigrate):     CommandMigrate,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 引数が無ければserve。未知のサブコマンドはエラーにする。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}
	if cmd, ok := knownCommands[args[0]]; ok {
		return cmd, nil
	}

	names := make([]string, 0, len(knownCommands))
	for name := range knownCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return "", fmt.Errorf("unknown command %q (available: %s)", args[0], strings.Join(names, ", "))
}
