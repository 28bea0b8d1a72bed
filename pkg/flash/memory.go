package flash

// Memory is an in-memory Device, used by tests and by standalone tooling
// that doesn't need data to survive a process restart.
type Memory struct {
	pageSize int
	pages    map[uint32][]byte
}

// NewMemory constructs an empty in-memory device with the given page size.
func NewMemory(pageSize int) *Memory {
	return &Memory{
		pageSize: pageSize,
		pages:    make(map[uint32][]byte),
	}
}

// PageSize implements Device.
func (m *Memory) PageSize() int { return m.pageSize }

// ReadPage implements Device.
func (m *Memory) ReadPage(addr uint32) ([]byte, error) {
	if page, ok := m.pages[addr]; ok {
		out := make([]byte, m.pageSize)
		copy(out, page)
		return out, nil
	}
	return make([]byte, m.pageSize), nil
}

// ErasePage implements Device.
func (m *Memory) ErasePage(addr uint32) error {
	delete(m.pages, addr)
	return nil
}

// WritePage implements Device.
func (m *Memory) WritePage(addr uint32, data []byte) error {
	if len(data) != m.pageSize {
		return ErrWriteFailed
	}
	page := make([]byte, m.pageSize)
	copy(page, data)
	m.pages[addr] = page
	return nil
}
