package clients

import (
	"errors"
	"time"
)

// GodownName is the reserved warehouse pseudo-client. Dispatch books
// undispatched remainders against it, so it must always exist and can
// never be removed.
const GodownName = "Godown"

// Client is a buyer of finished resin. District and State feed the
// order-number location scope.
type Client struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contactPerson"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	District      string    `json:"district"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

var (
	// ErrNotFound indicates the client is absent.
	ErrNotFound = errors.New("clients: client not found")
	// ErrDuplicateName indicates a name collision (names are unique
	// case-insensitively).
	ErrDuplicateName = errors.New("clients: client name already exists")
	// ErrInvalidInput indicates malformed client fields.
	ErrInvalidInput = errors.New("clients: invalid input")
	// ErrReserved indicates an attempt to modify the godown pseudo-client.
	ErrReserved = errors.New("clients: client name is reserved")
)
