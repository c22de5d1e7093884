package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/blackboxbots/bbb-assistant/internal/audit"
	"github.com/blackboxbots/bbb-assistant/internal/config"
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	if cfg.RabbitURL == "" {
		log.Fatal("RABBIT_URL is required for the audit worker")
	}
	if cfg.SinkURL == "" {
		log.Fatal("SINK_URL is required for the audit worker")
	}

	forwarder := audit.NewForwarder(cfg.SinkURL, audit.FieldNames{
		Email:     cfg.SinkFieldEmail,
		Message:   cfg.SinkFieldMessage,
		Session:   cfg.SinkFieldSession,
		Timestamp: cfg.SinkFieldTimestamp,
	})

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := audit.DeclareTopology(ch, cfg.AuditQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.AuditQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("audit worker started, queue=%s sink=%s concurrency=%d", cfg.AuditQueue, cfg.SinkURL, concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var ev audit.Event
				if err := json.Unmarshal(d.Body, &ev); err != nil || ev.Kind == "" {
					log.Printf("worker=%d bad event: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := forwarder.Forward(ctx, ev); err != nil {
					log.Printf("worker=%d forward kind=%s session=%s failed cost=%s err=%v",
						workerID, ev.Kind, ev.SessionID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed kind=%s err=%v", workerID, ev.Kind, err)
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("audit worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}
