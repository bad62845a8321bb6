package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"axiapac.com/backoffice/config"
	"axiapac.com/backoffice/core"
	"axiapac.com/backoffice/infrastructure/communication"
	"github.com/aws/aws-lambda-go/lambda"
)

func HandleRequest(ctx context.Context, event RecomputeEvent) (map[string]RecomputeStats, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := core.NewLogger(cfg.Log)

	loc, err := cfg.Attendance.Location()
	if err != nil {
		return nil, err
	}
	event, err = event.Normalize(time.Now(), loc)
	if err != nil {
		return nil, err
	}

	eventJson, _ := json.Marshal(event)
	logger.Info("recompute event", slog.String("event", string(eventJson)))

	dm, err := core.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dm.Close()

	return RecomputeAttendance(ctx, dm, communication.ConnectSlack(cfg.Slack), logger, event)
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(HandleRequest)
		return
	}

	var event RecomputeEvent
	if len(os.Args) > 1 {
		event.Date = os.Args[1]
	}
	results, err := HandleRequest(context.Background(), event)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	resJson, _ := json.MarshalIndent(results, "", "  ")
	fmt.Printf("[SUCCESS] Results:\n%s\n", string(resJson))
}
