package trainer

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc"

	pb "github.com/tunesmith-ml/tunesmith/go-controller/gen/trainerpb"
)

// #region mock
type mockTrainerService struct {
	pb.TrainerServiceClient

	startResp *pb.StartRunResponse
	startErr  error

	stepResp *pb.NextStepResponse
	stepErr  error

	evalResp *pb.EvaluateResponse
	evalErr  error

	saveResp *pb.SaveAdapterResponse
	saveErr  error

	loadResp *pb.LoadAdapterResponse
	loadErr  error
}

func (m *mockTrainerService) StartRun(_ context.Context, _ *pb.StartRunRequest, _ ...grpc.CallOption) (*pb.StartRunResponse, error) {
	return m.startResp, m.startErr
}

func (m *mockTrainerService) NextStep(_ context.Context, _ *pb.NextStepRequest, _ ...grpc.CallOption) (*pb.NextStepResponse, error) {
	return m.stepResp, m.stepErr
}

func (m *mockTrainerService) Evaluate(_ context.Context, _ *pb.EvaluateRequest, _ ...grpc.CallOption) (*pb.EvaluateResponse, error) {
	return m.evalResp, m.evalErr
}

func (m *mockTrainerService) SaveAdapter(_ context.Context, _ *pb.SaveAdapterRequest, _ ...grpc.CallOption) (*pb.SaveAdapterResponse, error) {
	return m.saveResp, m.saveErr
}

func (m *mockTrainerService) LoadAdapter(_ context.Context, _ *pb.LoadAdapterRequest, _ ...grpc.CallOption) (*pb.LoadAdapterResponse, error) {
	return m.loadResp, m.loadErr
}

// #endregion mock

func TestNewClientWithService(t *testing.T) {
	c := NewClientWithService(&mockTrainerService{})
	if c == nil {
		t.Fatal("expected non-nil client")
	}
	if c.client == nil {
		t.Fatal("expected non-nil internal client")
	}
}

func TestStartRunSuccess(t *testing.T) {
	mock := &mockTrainerService{
		startResp: &pb.StartRunResponse{
			TrainerRunId: "t-1",
			TotalSteps:   500,
			OutputDir:    "/srv/runs/t-1",
		},
	}
	c := NewClientWithService(mock)

	res, err := c.StartRun(context.Background(), "proj", "s3://bucket/data", "base-7b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TrainerRunID != "t-1" || res.TotalSteps != 500 || res.OutputDir != "/srv/runs/t-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestStartRunError(t *testing.T) {
	mock := &mockTrainerService{startErr: errors.New("boom")}
	c := NewClientWithService(mock)
	if _, err := c.StartRun(context.Background(), "p", "uri", "m"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNextStep(t *testing.T) {
	mock := &mockTrainerService{
		stepResp: &pb.NextStepResponse{Step: 42, TotalSteps: 100, Loss: 0.31, Done: false},
	}
	c := NewClientWithService(mock)

	res, err := c.NextStep(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Step != 42 || res.TotalSteps != 100 || res.Loss != 0.31 || res.Done {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestEvaluate(t *testing.T) {
	mock := &mockTrainerService{
		evalResp: &pb.EvaluateResponse{Metrics: map[string]float64{"eval_loss": 0.9}},
	}
	c := NewClientWithService(mock)

	metrics, err := c.Evaluate(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if metrics["eval_loss"] != 0.9 {
		t.Fatalf("unexpected metrics: %v", metrics)
	}
}

func TestSaveAdapter(t *testing.T) {
	mock := &mockTrainerService{
		saveResp: &pb.SaveAdapterResponse{Path: "/srv/runs/t-1/checkpoint-42"},
	}
	c := NewClientWithService(mock)

	path, err := c.SaveAdapter(context.Background(), "t-1", "/srv/runs/t-1/checkpoint-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/srv/runs/t-1/checkpoint-42" {
		t.Fatalf("unexpected path: %s", path)
	}
}

func TestLoadAdapterRefused(t *testing.T) {
	mock := &mockTrainerService{loadResp: &pb.LoadAdapterResponse{Loaded: false}}
	c := NewClientWithService(mock)
	if err := c.LoadAdapter(context.Background(), "t-1", "/nope"); err == nil {
		t.Fatal("expected error when trainer refuses to load")
	}
}

func TestLoadAdapterSuccess(t *testing.T) {
	mock := &mockTrainerService{loadResp: &pb.LoadAdapterResponse{Loaded: true}}
	c := NewClientWithService(mock)
	if err := c.LoadAdapter(context.Background(), "t-1", "/srv/runs/t-1/checkpoint-42"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
