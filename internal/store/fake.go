package store

// FakeStore is an in-memory Store. It doubles as the "memory" backend.
type FakeStore struct {
	Data       map[int]byte
	Size       int
	ReadError  error
	WriteError error
	// Stuck, when set, makes reads of written addresses return this value
	// instead, like a write-protected or worn chip.
	Stuck  *byte
	Writes int
}

// NewFakeStore returns an erased store of size bytes.
func NewFakeStore(size int) *FakeStore {
	return &FakeStore{Data: make(map[int]byte), Size: size}
}

func (f *FakeStore) Read(addr int) (byte, error) {
	if err := checkAddr(addr, f.Size); err != nil {
		return 0, err
	}
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	b, ok := f.Data[addr]
	if !ok {
		return Erased, nil
	}
	if f.Stuck != nil {
		return *f.Stuck, nil
	}
	return b, nil
}

func (f *FakeStore) Write(addr int, b byte) error {
	if err := checkAddr(addr, f.Size); err != nil {
		return err
	}
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Data[addr] = b
	f.Writes++
	return nil
}
