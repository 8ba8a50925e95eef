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


package dredge

import (
	"log/slog"

	"github.com/poiesic/dredge/extract"
	"github.com/poiesic/dredge/extract/bytefreq"
	"github.com/poiesic/dredge/extract/langchain"
	"github.com/poiesic/dredge/ingestion"
	"github.com/poiesic/dredge/storage"
	"github.com/poiesic/dredge/storage/badger"
)

// Database bundles the document index with the extraction components an
// ingestion engine needs.
type Database struct {
	backend    *badger.Backend
	docRepo    storage.DocumentRepository
	parser     extract.Parser
	classifier extract.Classifier
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	modelFile string
	inMemory  bool
}

// WithModelFile loads the file-type classifier from a trained model file
// instead of the built-in text/binary model.
func WithModelFile(path string) DatabaseOption {
	return func(o *databaseOptions) {
		o.modelFile = path
	}
}

// WithInMemory opens the index without a backing directory. Nothing
// survives Close; intended for tests and dry runs.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	var classifier extract.Classifier
	if options.modelFile != "" {
		classifier, err = bytefreq.NewClassifier(options.modelFile)
		if err != nil {
			docRepo.Close()
			backend.Close()
			return nil, err
		}
	} else {
		classifier = bytefreq.NewDefaultClassifier()
	}

	return &Database{
		backend:    backend,
		docRepo:    docRepo,
		parser:     langchain.NewParser(),
		classifier: classifier,
		logger:     slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	if err := db.docRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.docRepo
}

func (db *Database) NewIngestionEngine(opts ...ingestion.Option) (*ingestion.Engine, error) {
	return ingestion.NewEngine(db.docRepo, db.parser, db.classifier, opts...)
}
