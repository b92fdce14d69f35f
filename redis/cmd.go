package redis

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	// Longest rendered argument; anything longer is cut with an ellipsis so
	// large values never bloat span payloads.
	maxArgLen = 32

	// Most arguments rendered per command.
	maxArgs = 16

	// Most commands rendered per pipeline statement.
	maxPipelineCmds = 10
)

// cmdString renders a command the way it would read in redis-cli, with long
// values truncated.
func cmdString(cmd redis.Cmder) string {
	var b strings.Builder

	args := cmd.Args()
	shown := args
	if len(shown) > maxArgs {
		shown = shown[:maxArgs]
	}

	for i, arg := range shown {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(renderArg(arg))
	}
	if len(args) > maxArgs {
		fmt.Fprintf(&b, " ... %d more", len(args)-maxArgs)
	}

	return b.String()
}

// cmdsString renders a pipeline's commands separated by newlines.
func cmdsString(cmds []redis.Cmder) string {
	shown := cmds
	if len(shown) > maxPipelineCmds {
		shown = shown[:maxPipelineCmds]
	}

	parts := make([]string, 0, len(shown)+1)
	for _, cmd := range shown {
		parts = append(parts, cmdString(cmd))
	}
	if len(cmds) > maxPipelineCmds {
		parts = append(parts, fmt.Sprintf("... %d more", len(cmds)-maxPipelineCmds))
	}

	return strings.Join(parts, "\n")
}

func renderArg(arg interface{}) string {
	var s string
	switch v := arg.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}

	if len(s) > maxArgLen {
		return s[:maxArgLen] + "..."
	}
	return s
}
