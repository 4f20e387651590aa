// Package trades implements the append-only trade ledger operations.
package trades

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/trade"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/storage"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/errors"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/logging"
)

// CreateInput is the validated payload for a new trade record.
type CreateInput struct {
	Type   string  `json:"type" validate:"required,oneof=buy sell"`
	UserID string  `json:"user_id" validate:"required"`
	Symbol string  `json:"symbol" validate:"required"`
	Shares int     `json:"shares" validate:"required,gte=1,lte=100"`
	Price  float64 `json:"price" validate:"required,gt=0"`
}

// Service manages trade records. Records are never updated or deleted;
// corrections are recorded as new offsetting trades.
type Service struct {
	users    storage.UserStore
	store    storage.TradeStore
	validate *validator.Validate
	log      *logging.Logger
}

// New constructs the trade service.
func New(users storage.UserStore, store storage.TradeStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("trades")
	}
	return &Service{
		users:    users,
		store:    store,
		validate: validator.New(),
		log:      log,
	}
}

// Create validates and persists a trade. All validation happens before the
// store is touched; the symbol is normalized to uppercase and the creation
// instant is assigned at write time.
func (s *Service) Create(ctx context.Context, input CreateInput) (trade.Trade, error) {
	input.Symbol = strings.TrimSpace(input.Symbol)

	if err := s.validate.Struct(input); err != nil {
		return trade.Trade{}, errors.Validation(validationMessage(err))
	}

	if _, err := s.users.GetUser(ctx, input.UserID); err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return trade.Trade{}, errors.Validation("user_id does not reference an existing user")
		}
		return trade.Trade{}, err
	}

	created, err := s.store.CreateTrade(ctx, trade.Trade{
		Type:   trade.Side(input.Type),
		UserID: input.UserID,
		Symbol: strings.ToUpper(input.Symbol),
		Shares: input.Shares,
		Price:  input.Price,
	})
	if err != nil {
		return trade.Trade{}, err
	}

	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"trade_id": created.ID,
		"type":     created.Type,
		"symbol":   created.Symbol,
	}).Info("trade recorded")
	return created, nil
}

// List returns trades matching the filter, ascending by id.
func (s *Service) List(ctx context.Context, filter trade.Filter) ([]trade.Trade, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, errors.Validation("type must be buy or sell")
	}
	return s.store.ListTrades(ctx, filter)
}

// Get returns a single trade by id.
func (s *Service) Get(ctx context.Context, id int64) (trade.Trade, error) {
	return s.store.GetTrade(ctx, id)
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid trade payload"
	}

	switch fieldErrs[0].Field() {
	case "Type":
		return "type must be buy or sell"
	case "UserID":
		return "user_id is required"
	case "Symbol":
		return "symbol is required"
	case "Shares":
		return "shares must be between 1 and 100"
	case "Price":
		return "price must be positive"
	default:
		return "invalid trade payload"
	}
}
