package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/engine"
)

func newChatCmd() *cobra.Command {
	var (
		conversationID string
		email          string
		name           string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive support chat over one conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			mesh, err := newMesh()
			if err != nil {
				return err
			}
			if conversationID == "" {
				conversationID = uuid.NewString()
			}

			customer := &core.CustomerInfo{Email: email, Name: name}
			fmt.Printf("conversation %s — type a message, 'exit' to quit\n", conversationID)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				turn, err := mesh.HandleMessage(cmd.Context(), conversationID, engine.Inbound{
					Content:  line,
					Customer: customer,
				})
				if err != nil {
					return err
				}
				// Identity only needs to be sent once; the document keeps it.
				customer = nil

				fmt.Printf("[%s] %s\n", turnTag(turn), turn.Reply)
			}
		},
	}

	cmd.Flags().StringVar(&conversationID, "id", "", "conversation id (default: new random id)")
	cmd.Flags().StringVar(&email, "email", "demo@example.com", "customer email")
	cmd.Flags().StringVar(&name, "name", "Demo Customer", "customer name")

	return cmd
}

func turnTag(t *engine.Turn) string {
	if t.Escalated {
		return "escalated"
	}
	if t.AgentKey == "" {
		return "system"
	}
	return t.AgentKey
}
