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


// Package storage provides the document index abstraction layer.
//
// It defines the repository interface the ingestion workers write produced
// documents through, decoupling the pipeline from the index implementation.
// The BadgerDB-backed implementation lives in storage/badger; tests use
// lightweight in-memory fakes.
//
// All repository implementations must be thread-safe: the ingestion engine
// writes from multiple worker goroutines concurrently.
package storage
