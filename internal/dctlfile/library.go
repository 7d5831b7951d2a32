package dctlfile

import "sync"

// Library holds the loaded files of one working session. Names are unique: a
// file whose name is already present is not added again.
type Library struct {
	mu       sync.RWMutex
	files    []*File
	selected string
}

func NewLibrary() *Library {
	return &Library{}
}

// Add appends files with unseen names and returns how many were added. The
// first incoming file becomes selected when nothing is.
func (lib *Library) Add(files ...*File) int {
	lib.mu.Lock()
	defer lib.mu.Unlock()

	names := make(map[string]bool, len(lib.files))
	for _, f := range lib.files {
		names[f.Name] = true
	}

	added := 0
	for _, f := range files {
		if f == nil || names[f.Name] {
			continue
		}
		names[f.Name] = true
		lib.files = append(lib.files, f)
		added++
	}

	if lib.selected == "" && len(files) > 0 && files[0] != nil {
		if lib.indexOf(files[0].ID) >= 0 {
			lib.selected = files[0].ID
		} else if len(lib.files) > 0 {
			lib.selected = lib.files[0].ID
		}
	}
	return added
}

// Select makes id the selected file. Unknown ids are ignored.
func (lib *Library) Select(id string) bool {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	if lib.indexOf(id) < 0 {
		return false
	}
	lib.selected = id
	return true
}

// Remove drops a file. Removing the selected file selects the first remaining one.
func (lib *Library) Remove(id string) bool {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	i := lib.indexOf(id)
	if i < 0 {
		return false
	}
	lib.files = append(lib.files[:i], lib.files[i+1:]...)
	if lib.selected == id {
		lib.selected = ""
		if len(lib.files) > 0 {
			lib.selected = lib.files[0].ID
		}
	}
	return true
}

func (lib *Library) Clear() {
	lib.mu.Lock()
	defer lib.mu.Unlock()
	lib.files = nil
	lib.selected = ""
}

func (lib *Library) Selected() *File {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	if i := lib.indexOf(lib.selected); i >= 0 {
		return lib.files[i]
	}
	return nil
}

func (lib *Library) Get(id string) *File {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	if i := lib.indexOf(id); i >= 0 {
		return lib.files[i]
	}
	return nil
}

func (lib *Library) Files() []*File {
	lib.mu.RLock()
	defer lib.mu.RUnlock()
	return append([]*File(nil), lib.files...)
}

func (lib *Library) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, f := range lib.files {
		if f.ID == id {
			return i
		}
	}
	return -1
}
