package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rcliao/gatekeeper/internal/model"
	"github.com/rcliao/gatekeeper/internal/router"
)

const chatHelp = "Commands: /yes (classification was right), /no [reply] (it was wrong), /stats, /quit"

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session with feedback",
		Long:  "Read queries from stdin, answer each, and accept /yes or /no feedback on the last classification.\n" + chatHelp,
		Run:   runChat,
	}

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	gk, s, err := openGatekeeper(cmd.Context())
	if err != nil {
		exitErr("open gatekeeper", err)
	}
	defer s.Close()

	rt, err := newRouter(gk, nil)
	if err != nil {
		exitErr("remote model", err)
	}

	session := uuid.NewString()
	defer rt.EndSession(session)

	if err := chatLoop(cmd, rt, gk.Stats, session); err != nil {
		exitErr("chat", err)
	}
}

func chatLoop(cmd *cobra.Command, rt *router.Router, stats func() model.BrainStats, session string) error {
	ctx := cmd.Context()
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, chatHelp)
	for {
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}

		command, rest, _ := strings.Cut(line, " ")
		switch command {
		case "/quit", "/exit":
			return nil
		case "/stats":
			printJSON(cmd, stats())
		case "/yes", "/no":
			verdict := model.VerdictConfirm
			if command == "/no" {
				verdict = model.VerdictReject
			}
			res, err := rt.Feedback(ctx, session, verdict, strings.TrimSpace(rest))
			if errors.Is(err, router.ErrNoTurn) {
				fmt.Fprintln(out, "Nothing to give feedback on yet.")
				continue
			}
			if err != nil {
				return err
			}
			if res.Learned {
				fmt.Fprintf(out, "Learned: %q is now %s.\n", res.Query, res.Category)
			} else {
				fmt.Fprintln(out, "Thanks!")
			}
		default:
			rep := rt.Route(ctx, session, line)
			fmt.Fprintf(out, "[%s/%s] %s\n", rep.Category, rep.Origin, rep.Reply)
		}
	}
}

