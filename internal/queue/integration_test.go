//go:build integration

package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"

	"github.com/felixgeelhaar/mathdrill/internal/catalog"
	"github.com/felixgeelhaar/mathdrill/internal/drill"
	"github.com/felixgeelhaar/mathdrill/internal/queue"
	"github.com/felixgeelhaar/mathdrill/internal/worksheet"
)

// setupRabbitMQ creates a RabbitMQ container and returns a live connection
func setupRabbitMQ(t *testing.T) *queue.Connection {
	t.Helper()
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12-management")
	if err != nil {
		t.Fatalf("failed to start RabbitMQ container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	amqpURL, err := container.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("failed to get AMQP URL: %v", err)
	}

	conn, err := queue.NewConnection(amqpURL)
	if err != nil {
		t.Fatalf("failed to create connection: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func newService(t *testing.T) *drill.Service {
	t.Helper()
	reg := catalog.NewRegistry(catalog.NewLoader())
	if err := reg.Load(); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return drill.NewService(reg, drill.DefaultConfig())
}

func TestIntegration_Connection_InvalidURL(t *testing.T) {
	if _, err := queue.NewConnection("amqp://invalid:5672"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestIntegration_Producer_PublishJob(t *testing.T) {
	conn := setupRabbitMQ(t)
	producer := queue.NewProducer(conn)

	job := queue.NewWorksheetJob(drill.BatchRequest{Topic: "fraction", Count: 5})
	if err := producer.PublishJob(context.Background(), job); err != nil {
		t.Fatalf("failed to publish job: %v", err)
	}

	q, err := conn.Channel().QueueInspect(queue.JobQueueName)
	if err != nil {
		t.Fatalf("failed to inspect queue: %v", err)
	}
	if q.Messages != 1 {
		t.Errorf("expected 1 message in queue, got %d", q.Messages)
	}
}

func TestIntegration_WorksheetRoundTrip(t *testing.T) {
	conn := setupRabbitMQ(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := worksheet.NewMemoryStore()
	consumer := queue.NewConsumer(conn, queue.NewWorksheetHandler(newService(t), store), queue.ConsumerConfig{Workers: 2})
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("failed to start consumer: %v", err)
	}
	defer consumer.Stop()

	results := queue.NewResultConsumer(conn, nil)
	if err := results.Start(ctx); err != nil {
		t.Fatalf("failed to start result consumer: %v", err)
	}
	defer results.Stop()

	job := queue.NewWorksheetJob(drill.BatchRequest{Topic: "sqrt", Count: 10, Seed: 3})
	done := make(chan *queue.JobResult, 1)
	results.Subscribe(job.ID.String(), func(r *queue.JobResult) { done <- r })

	if err := queue.NewProducer(conn).PublishJob(ctx, job); err != nil {
		t.Fatalf("failed to publish job: %v", err)
	}

	select {
	case r := <-done:
		if r.Status != queue.StatusCompleted {
			t.Fatalf("status = %q (error %q)", r.Status, r.Error)
		}
		ws, err := store.Get(ctx, r.WorksheetID)
		if err != nil {
			t.Fatalf("worksheet not stored: %v", err)
		}
		if len(ws.Problems) != 10 || ws.Seed != 3 {
			t.Errorf("stored worksheet: %d problems, seed %d", len(ws.Problems), ws.Seed)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for job result")
	}
}

func TestIntegration_FailedJobReportsError(t *testing.T) {
	conn := setupRabbitMQ(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	consumer := queue.NewConsumer(conn, queue.NewWorksheetHandler(newService(t), worksheet.NewMemoryStore()), queue.DefaultConsumerConfig())
	if err := consumer.Start(ctx); err != nil {
		t.Fatalf("failed to start consumer: %v", err)
	}
	defer consumer.Stop()

	results := queue.NewResultConsumer(conn, nil)
	if err := results.Start(ctx); err != nil {
		t.Fatalf("failed to start result consumer: %v", err)
	}
	defer results.Stop()

	job := queue.NewWorksheetJob(drill.BatchRequest{Topic: "trigonometry"})
	done := make(chan *queue.JobResult, 1)
	results.Subscribe(job.ID.String(), func(r *queue.JobResult) { done <- r })

	if err := queue.NewProducer(conn).PublishJob(ctx, job); err != nil {
		t.Fatalf("failed to publish job: %v", err)
	}

	select {
	case r := <-done:
		if r.Status != queue.StatusFailed || r.Error == "" {
			t.Errorf("result = %+v; want failed with error", r)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for job result")
	}
}
