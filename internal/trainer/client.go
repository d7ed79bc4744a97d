//go:generate protoc --go_out=../../gen --go-grpc_out=../../gen -I ../../proto ../../proto/trainer.proto

package trainer

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/tunesmith-ml/tunesmith/go-controller/gen/trainerpb"
)

// #region types
// StartResult holds the response from a StartRun RPC call.
type StartResult struct {
	TrainerRunID string
	TotalSteps   int
	OutputDir    string
}

// StepResult holds the response from a NextStep RPC call.
type StepResult struct {
	Step       int
	TotalSteps int
	Loss       float64
	Done       bool
}

// #endregion types

// #region client-struct
// Client wraps the gRPC connection to the Python trainer service.
type Client struct {
	conn   *grpc.ClientConn
	client pb.TrainerServiceClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to the trainer gRPC server.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{
		conn:   conn,
		client: pb.NewTrainerServiceClient(conn),
	}, nil
}

// NewClientWithService creates a Client with an injected service
// implementation. Used for testing without a real gRPC connection.
func NewClientWithService(svc pb.TrainerServiceClient) *Client {
	return &Client{client: svc}
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion constructor

// #region start-run
// StartRun begins a fine-tuning run over an uploaded dataset.
func (c *Client) StartRun(ctx context.Context, project, datasetURI, baseModel string) (StartResult, error) {
	resp, err := c.client.StartRun(ctx, &pb.StartRunRequest{
		Project:    project,
		DatasetUri: datasetURI,
		BaseModel:  baseModel,
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("start run rpc: %w", err)
	}
	return StartResult{
		TrainerRunID: resp.TrainerRunId,
		TotalSteps:   int(resp.TotalSteps),
		OutputDir:    resp.OutputDir,
	}, nil
}

// #endregion start-run

// #region next-step
// NextStep executes one training step and reports progress.
func (c *Client) NextStep(ctx context.Context, trainerRunID string) (StepResult, error) {
	resp, err := c.client.NextStep(ctx, &pb.NextStepRequest{TrainerRunId: trainerRunID})
	if err != nil {
		return StepResult{}, fmt.Errorf("next step rpc: %w", err)
	}
	return StepResult{
		Step:       int(resp.Step),
		TotalSteps: int(resp.TotalSteps),
		Loss:       resp.Loss,
		Done:       resp.Done,
	}, nil
}

// #endregion next-step

// #region evaluate
// Evaluate runs an evaluation pass on the validation split and returns
// metric name to value.
func (c *Client) Evaluate(ctx context.Context, trainerRunID string) (map[string]float64, error) {
	resp, err := c.client.Evaluate(ctx, &pb.EvaluateRequest{TrainerRunId: trainerRunID})
	if err != nil {
		return nil, fmt.Errorf("evaluate rpc: %w", err)
	}
	return resp.Metrics, nil
}

// #endregion evaluate

// #region adapters
// SaveAdapter writes the current adapter weights into dir and returns the
// written path.
func (c *Client) SaveAdapter(ctx context.Context, trainerRunID, dir string) (string, error) {
	resp, err := c.client.SaveAdapter(ctx, &pb.SaveAdapterRequest{
		TrainerRunId: trainerRunID,
		Dir:          dir,
	})
	if err != nil {
		return "", fmt.Errorf("save adapter rpc: %w", err)
	}
	return resp.Path, nil
}

// LoadAdapter loads adapter weights from a saved checkpoint directory.
func (c *Client) LoadAdapter(ctx context.Context, trainerRunID, dir string) error {
	resp, err := c.client.LoadAdapter(ctx, &pb.LoadAdapterRequest{
		TrainerRunId: trainerRunID,
		Dir:          dir,
	})
	if err != nil {
		return fmt.Errorf("load adapter rpc: %w", err)
	}
	if !resp.Loaded {
		return fmt.Errorf("load adapter: trainer refused %s", dir)
	}
	return nil
}

// #endregion adapters
