package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/mail-relay/internal/adapters/webhook"
	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/di"
	"github.com/mikey/mail-relay/internal/emlfile"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, logger *zap.Logger, verifier *core.Verifier, client *webhook.Client) error {
	defer logger.Sync()

	// Read email from file or stdin
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	email, err := emlfile.Read(emailReader)
	if err != nil {
		return err
	}

	email.Timestamp = time.Now().Unix()
	email.Token = uuid.NewString()
	email.Signature = verifier.Sign(email.Timestamp, email.Token)

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("Sender: %s\n", email.Sender)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.BodyPlain))
	fmt.Printf("\n")

	ctx := context.Background()
	startTime := time.Now()

	var reply *webhook.Reply
	switch flags.Mode {
	case "respond":
		if flags.Template == "" {
			return fmt.Errorf("-template is required in respond mode")
		}
		reply, err = client.Respond(ctx, flags.Template, email)
	case "forward":
		if flags.Channel == "" {
			return fmt.Errorf("-channel is required in forward mode")
		}
		reply, err = client.ForwardSlack(ctx, flags.Channel, email)
	default:
		return fmt.Errorf("unsupported mode: %s", flags.Mode)
	}
	if err != nil {
		return err
	}

	// Print results
	fmt.Printf("=== Relay Response ===\n")
	fmt.Printf("Status: %d\n", reply.Status)
	fmt.Printf("Body: %s\n", reply.Body)
	fmt.Printf("Processing time: %v\n", time.Since(startTime))

	if reply.Status != 200 {
		return fmt.Errorf("relay rejected the notification with status %d", reply.Status)
	}
	return nil
}
