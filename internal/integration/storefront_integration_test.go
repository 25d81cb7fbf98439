//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/cart"
	"github.com/diewo77/autoparts/internal/config"
	"github.com/diewo77/autoparts/internal/db"
	"github.com/diewo77/autoparts/internal/enquiry"
	"github.com/diewo77/autoparts/internal/events"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/diewo77/autoparts/internal/quotation"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const exchange = "autoparts.events"

func TestQuotationLifecycleOnPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	dbURL := startPostgres(ctx, t)
	amqpURL := startRabbitMQ(ctx, t)

	dbCfg := config.DatabaseConfig{Driver: "postgres", Override: dbURL}
	gdb, err := db.Open(dbCfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, config.MigrateSQL, dbCfg))
	// Running the migrations twice is a no-op.
	require.NoError(t, db.Migrate(gdb, config.MigrateSQL, dbCfg))
	require.NoError(t, db.Seed(gdb, db.SeedOptions{AdminEmail: "admin@example.com", AdminPassword: "admin-secret"}))

	conn, publisher, err := events.Dial(amqpURL, exchange)
	require.NoError(t, err)
	defer conn.Close()
	deliveries := consume(t, conn, "quotation.#")

	logger := log.New(io.Discard, "", 0)
	repo := quotation.NewGormRepository(gdb)
	submitter := &quotation.Submitter{
		Repo:   repo,
		Calc:   quotation.Calculator{TaxRate: quotation.DefaultTaxRate},
		Events: publisher,
		Logger: logger,
	}
	svc := &quotation.Service{Repo: repo, Events: publisher, Logger: logger}

	store, err := cart.NewStore(cart.GormPersistence{DB: gdb, Key: "3f6c1c58-8d0e-4d5e-9a51-1d2b8c0f7a11"})
	require.NoError(t, err)
	require.NoError(t, store.AddToCart(cart.Product{ID: "BRK-001", Name: "Brake Pads Set", Price: decimal.NewFromInt(299)}))
	require.NoError(t, store.AddToCart(cart.Product{ID: "ENG-001", Name: "Oil Filter", Price: decimal.NewFromInt(45)}))
	require.NoError(t, store.UpdateQuantity("ENG-001", 3))

	q, err := submitter.Submit(ctx, store, quotation.CustomerDetails{Name: "Ana Diaz", Email: "ana@example.com", Phone: "0612345678"}, nil)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("QT-%d-0001", time.Now().Year()), q.Number)
	require.True(t, decimal.RequireFromString("434").Equal(q.Subtotal))
	require.True(t, decimal.RequireFromString("455.70").Equal(q.FinalAmount))
	require.Empty(t, store.Items())

	stored, err := repo.Get(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	require.True(t, decimal.RequireFromString("0.05").Equal(stored.TaxRate))

	// Only one of many concurrent moves out of pending may win.
	targets := []quotation.Status{quotation.StatusApproved, quotation.StatusRejected}
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []quotation.Status
	)
	for i := 0; i < 8; i++ {
		to := targets[i%2]
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ChangeStatus(ctx, q.ID, to)
			if err == nil {
				mu.Lock()
				winners = append(winners, to)
				mu.Unlock()
				return
			}
			var te *quotation.TransitionError
			var se *quotation.StaleStatusError
			if !errors.As(err, &te) && !errors.As(err, &se) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	require.Len(t, winners, 1)

	var final models.Quotation
	require.NoError(t, gdb.First(&final, q.ID).Error)
	require.Equal(t, winners[0], final.Status)

	submitted := next(t, deliveries)
	require.Equal(t, "quotation.submitted.v1", submitted.RoutingKey)
	var env events.EventEnvelope[events.QuotationSubmitted]
	require.NoError(t, json.Unmarshal(submitted.Body, &env))
	require.NoError(t, env.Validate(events.QuotationSubmittedName, 1))
	require.Equal(t, q.Number, env.Payload.Number)
	require.Equal(t, 2, env.Payload.ItemCount)

	changed := next(t, deliveries)
	require.Equal(t, "quotation.status_changed.v1", changed.RoutingKey)
	var changedEnv events.EventEnvelope[events.QuotationStatusChanged]
	require.NoError(t, json.Unmarshal(changed.Body, &changedEnv))
	require.Equal(t, string(winners[0]), changedEnv.Payload.To)

	select {
	case d := <-deliveries:
		t.Fatalf("expected exactly one status change event, got %s", d.RoutingKey)
	case <-time.After(500 * time.Millisecond):
	}

	// Concurrent bookings of one day never exceed its capacity.
	bookings := &enquiry.Service{DB: gdb, DailyCapacity: 2, Logger: logger}
	date := time.Now().AddDate(0, 0, 7).UTC().Format("2006-01-02")
	var booked, full int
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := bookings.Submit(ctx, enquiry.Request{
				Name: "Ana Diaz", Email: "ana@example.com", Phone: "0612345678",
				CarModel: "BMW", ProductType: "Brake System",
				DeliveryDate: date, DeliveryWindow: enquiry.DeliveryWindows[0],
			})
			mu.Lock()
			defer mu.Unlock()
			var ve *apperr.ValidationError
			switch {
			case err == nil:
				booked++
			case errors.As(err, &ve) && ve.Fields["delivery_date"] == enquiry.CodeBooked:
				full++
			default:
				t.Errorf("unexpected booking error: %v", err)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 2, booked)
	require.Equal(t, 6, full)
}

func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "autoparts"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { terminate(t, container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://postgres:postgres@%s:%s/autoparts?sslmode=disable", host, mappedPort.Port())
}

func startRabbitMQ(ctx context.Context, t *testing.T) string {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { terminate(t, container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return "amqp://guest:guest@" + host + ":" + mappedPort.Port() + "/"
}

func terminate(t *testing.T, c testcontainers.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := c.Terminate(ctx); err != nil {
		t.Logf("terminate container: %v", err)
	}
}

// consume binds an exclusive queue to the exchange for pattern.
func consume(t *testing.T, conn *amqp.Connection, pattern string) <-chan amqp.Delivery {
	t.Helper()
	ch, err := conn.Channel()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, pattern, exchange, false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)
	return deliveries
}

func next(t *testing.T, deliveries <-chan amqp.Delivery) amqp.Delivery {
	t.Helper()
	select {
	case d := <-deliveries:
		return d
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for event")
		return amqp.Delivery{}
	}
}
