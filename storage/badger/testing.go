// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import "github.com/poiesic/lyrica/storage"

// NewMemoryRepositories creates in-memory song, section and manifest
// repositories for testing. Caller must close the repos and backend when done.
func NewMemoryRepositories() (storage.SongRepository, storage.SectionRepository, storage.ManifestRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	songRepo, err := NewSongRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	sectionRepo, err := NewSectionRepository(backend)
	if err != nil {
		songRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	manifestRepo := NewManifestRepository(backend)

	return songRepo, sectionRepo, manifestRepo, backend, nil
}
