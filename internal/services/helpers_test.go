package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/toolhatch-backend/internal/config"
	"github.com/javajoker/toolhatch-backend/internal/database"
	"github.com/javajoker/toolhatch-backend/internal/events"
	"github.com/javajoker/toolhatch-backend/internal/gateway"
	"github.com/javajoker/toolhatch-backend/internal/models"
)

const testIPNSecret = "test-ipn-secret"

// Seeded catalog ids.
const (
	flutterKitID  uint = 1 // 49.99
	gridBotID     uint = 3 // 99.00
	landingPackID uint = 7 // free, absolute download URL
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Initialize(config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	require.NoError(t, database.SeedInitialData(db, "", ""))
	t.Cleanup(func() { database.Close(db) })
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name, Email: name + "@example.com"}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func testPaymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		IPNSecret:       testIPNSecret,
		CallbackBaseURL: "shop.example",
		PriceCurrency:   "usd",
		DefaultCurrency: "btc",
	}
}

type fakeGateway struct {
	mu          sync.Mutex
	createCalls []gateway.CreatePaymentParams
	getCalls    []string
	createErr   error
	getErr      error
	status      string
}

func (g *fakeGateway) CreatePayment(ctx context.Context, params gateway.CreatePaymentParams) (*gateway.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls = append(g.createCalls, params)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &gateway.Payment{
		PaymentID:     gateway.FlexString(fmt.Sprintf("pay-%d", len(g.createCalls))),
		PaymentStatus: gateway.StatusWaiting,
		PayAddress:    "bc1qtestaddress",
		PayAmount:     "0.0015",
		PayCurrency:   params.PayCurrency,
	}, nil
}

func (g *fakeGateway) GetPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getCalls = append(g.getCalls, paymentID)
	if g.getErr != nil {
		return nil, g.getErr
	}
	return &gateway.Payment{PaymentID: gateway.FlexString(paymentID), PaymentStatus: g.status}, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []uint
	err  error
}

func (n *fakeNotifier) SendPaymentConfirmation(user *models.User, order *models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, order.ID)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *fakePublisher) PublishEvent(ctx context.Context, topic, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := event.(events.OrderEvent); ok {
		p.events = append(p.events, e)
	}
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) ofType(eventType string) []events.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.OrderEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func uintPtr(v uint) *uint { return &v }

func strPtr(s string) *string { return &s }
