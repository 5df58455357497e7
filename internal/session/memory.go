package session

import "sync"

const flashesKey = "_flash"

// MemoryStore 进程内实现，供测试和不需要 cookie 的场景使用
type MemoryStore struct {
	mu     sync.Mutex
	values map[interface{}]interface{}
	saves  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[interface{}]interface{}{}}
}

func (m *MemoryStore) Get(key interface{}) interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *MemoryStore) Set(key interface{}, val interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = val
}

func (m *MemoryStore) Delete(key interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = map[interface{}]interface{}{}
}

func (m *MemoryStore) AddFlash(value interface{}, vars ...string) {
	key := flashKey(vars)
	m.mu.Lock()
	defer m.mu.Unlock()
	list, _ := m.values[key].([]interface{})
	m.values[key] = append(list, value)
}

func (m *MemoryStore) Flashes(vars ...string) []interface{} {
	key := flashKey(vars)
	m.mu.Lock()
	defer m.mu.Unlock()
	list, _ := m.values[key].([]interface{})
	delete(m.values, key)
	return list
}

func (m *MemoryStore) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	return nil
}

// Saves Save 被调用的次数
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func flashKey(vars []string) string {
	if len(vars) > 0 {
		return vars[0]
	}
	return flashesKey
}
