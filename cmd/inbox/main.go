// inbox - command line admin for the portfolio contact inbox
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/HEMANTH-S-KUMAR-1/AI-HACK/clients/go/contact"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	client := contact.NewClient(os.Getenv("CONTACT_URL"))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health(ctx)
		exitOnError(err)
		printJSON(resp)

	case "list":
		msgs, err := client.List(ctx)
		exitOnError(err)
		printMessages(msgs)

	case "archived":
		msgs, err := client.ListArchived(ctx)
		exitOnError(err)
		printMessages(msgs)

	case "read":
		requireArgs(3, "Usage: inbox read <id>")
		_, err := client.MarkRead(ctx, os.Args[2])
		exitOnError(err)
		fmt.Printf("Marked read: %s\n", os.Args[2])

	case "status":
		requireArgs(4, "Usage: inbox status <id> <new|read|replied|spam>")
		status := os.Args[3]
		_, err := client.UpdateStatus(ctx, os.Args[2], contact.StatusUpdate{Status: &status})
		exitOnError(err)
		fmt.Printf("Status of %s set to %s\n", os.Args[2], status)

	case "archive":
		requireArgs(3, "Usage: inbox archive <id>")
		_, err := client.Archive(ctx, os.Args[2])
		exitOnError(err)
		fmt.Printf("Archived: %s\n", os.Args[2])

	case "send":
		requireArgs(5, "Usage: inbox send <name> <email> <message>")
		resp, err := client.Submit(ctx, contact.SubmitRequest{
			Name:    os.Args[2],
			Email:   os.Args[3],
			Message: os.Args[4],
		})
		exitOnError(err)
		fmt.Printf("Sent: %s\n", resp.MessageID)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`inbox - portfolio contact inbox admin

Usage: inbox <command> [options]

Commands:
  list                          List active messages
  archived                      List archived messages
  read <id>                     Mark a message as read
  status <id> <status>          Set status (new, read, replied, spam)
  archive <id>                  Move a message to the archive
  send <name> <email> <message> Submit a contact message
  health                        Check server health

Environment:
  CONTACT_URL   Server URL (default: http://localhost:3001)`)
}

func printMessages(msgs []contact.Message) {
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return
	}
	for _, m := range msgs {
		flag := " "
		if !m.Read {
			flag = "*"
		}
		fmt.Printf("%s %s  [%s] %s <%s>\n", flag, m.ID, m.Status, m.Name, m.Email)
		fmt.Printf("    %s\n", m.Message)
		if m.ArchivedAt != "" {
			fmt.Printf("    archived %s\n", m.ArchivedAt)
		}
	}
}

func requireArgs(n int, msg string) {
	if len(os.Args) < n {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}
