package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var cliCmd = &cobra.Command{
	Use:   "cli <command> [args...]",
	Short: "Send one command to a running server and print the reply",
	Example: `  moonkv cli set greeting hello
  moonkv cli --addr 127.0.0.1:6380 lrange queue 0 -1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCli,
}

func init() {
	cliCmd.Flags().String("addr", "127.0.0.1:8000", "server address")
	cliCmd.Flags().Duration("timeout", 5*time.Second, "dial and read timeout")
}

func runCli(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	rdb := redis.NewClient(&redis.Options{
		Addr:            addr,
		Protocol:        2,
		DisableIdentity: true,
		DialTimeout:     timeout,
		ReadTimeout:     timeout,
		WriteTimeout:    timeout,
	})
	defer rdb.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cmdArgs := make([]any, len(args))
	for i, a := range args {
		cmdArgs[i] = a
	}

	reply, err := rdb.Do(ctx, cmdArgs...).Result()
	switch {
	case errors.Is(err, redis.Nil):
		reply = nil
	case err != nil:
		var redisErr redis.Error
		if errors.As(err, &redisErr) {
			cmd.Printf("(error) %s\n", redisErr.Error())
			return nil
		}
		return fmt.Errorf("send %s: %w", args[0], err)
	}

	formatReply(cmd.OutOrStdout(), reply, "")
	return nil
}

// formatReply prints a reply the way redis-cli does
func formatReply(w io.Writer, reply any, indent string) {
	switch v := reply.(type) {
	case nil:
		fmt.Fprintln(w, "(nil)")
	case int64:
		fmt.Fprintf(w, "(integer) %d\n", v)
	case string:
		fmt.Fprintf(w, "%q\n", v)
	case []any:
		if len(v) == 0 {
			fmt.Fprintln(w, "(empty array)")
			return
		}
		width := len(fmt.Sprint(len(v)))
		for i, el := range v {
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			if i > 0 {
				fmt.Fprint(w, indent)
			}
			fmt.Fprint(w, prefix)
			formatReply(w, el, indent+strings.Repeat(" ", len(prefix)))
		}
	default:
		fmt.Fprintf(w, "%v\n", v)
	}
}
