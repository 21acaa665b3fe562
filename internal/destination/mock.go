package destination

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a OSM.
type MockClient struct {
	mu     sync.Mutex
	Cities map[string]Attributes
	Errs   map[string]error
	Calls  []string
}

func (m *MockClient) Lookup(ctx context.Context, city string) (Attributes, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, city)
	m.mu.Unlock()

	if err, ok := m.Errs[city]; ok {
		return Attributes{}, err
	}
	attrs, ok := m.Cities[city]
	if !ok {
		return Attributes{}, ErrCityNotFound
	}
	attrs.City = city
	return attrs, nil
}
