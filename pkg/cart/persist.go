package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/pkg/clientstore"
)

// Namespace is the fixed key the cart is stored under.
const Namespace = "cart"

type Persister interface {
	Get(namespace string) ([]byte, error)
	Put(namespace string, value []byte) error
}

func Save(p Persister, s *Store) error {
	items := s.Items()
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return p.Put(Namespace, data)
}

// Load returns an empty store when nothing has been saved yet.
func Load(p Persister) (*Store, error) {
	data, err := p.Get(Namespace)
	if errors.Is(err, clientstore.ErrNotFound) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return New(items...), nil
}
