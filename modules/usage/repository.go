package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"etsy-optimizer-server/modules/common/model"
)

// Repository - UserState 영속화 경계. 비즈니스 로직은 여기에만 의존한다.
type Repository interface {
	// Load returns the persisted state and whether anything was persisted.
	Load() (model.UserState, bool, error)
	Save(state model.UserState) error
}

// FileRepository - 프로필 로컬 JSON 파일 저장소 (기본 백엔드)
type FileRepository struct {
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Load() (model.UserState, bool, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.UserState{}, false, nil
		}
		return model.UserState{}, false, fmt.Errorf("failed to read user state: %w", err)
	}

	var state model.UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.UserState{}, false, fmt.Errorf("failed to parse user state: %w", err)
	}
	return state, true, nil
}

func (r *FileRepository) Save(state model.UserState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode user state: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write user state: %w", err)
	}
	return nil
}

// MemoryRepository - 테스트용 인메모리 저장소
type MemoryRepository struct {
	state  model.UserState
	stored bool

	// Corrupt simulates unreadable persisted data.
	Corrupt bool
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load() (model.UserState, bool, error) {
	if r.Corrupt {
		return model.UserState{}, false, fmt.Errorf("failed to parse user state: corrupt record")
	}
	return r.state, r.stored, nil
}

func (r *MemoryRepository) Save(state model.UserState) error {
	r.state = state
	r.stored = true
	return nil
}
