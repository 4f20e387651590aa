// Package app composes the services with their dependencies. Business
// logic lives in the service packages; this layer only wires.
package app

import (
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/services/accounts"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/services/trades"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/storage"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/storage/memory"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/logging"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/password"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/token"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users  storage.UserStore
	Trades storage.TradeStore
}

// Application ties the domain services together.
type Application struct {
	log *logging.Logger

	Accounts *accounts.Service
	Trades   *trades.Service
}

// New builds a fully initialised application with the provided stores,
// token codec, and password hasher.
func New(stores Stores, codec *token.Codec, hasher *password.Hasher, log *logging.Logger) *Application {
	if log == nil {
		log = logging.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Trades == nil {
		stores.Trades = mem
	}

	return &Application{
		log:      log,
		Accounts: accounts.New(stores.Users, codec, hasher, log.WithField("component", "accounts")),
		Trades:   trades.New(stores.Users, stores.Trades, log.WithField("component", "trades")),
	}
}
