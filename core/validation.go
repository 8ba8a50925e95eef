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


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Id must be even (odd ids are reserved for derived content)
//   - Digest must not be empty
//
// NOT validated (legitimately empty for unparseable or unclassifiable
// content):
//   - Body, FileType, MediaType
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id%2 != 0 {
		return fmt.Errorf("%w: %w (id %d)", ErrInvalidDocument, ErrOddPrimaryId, doc.Id)
	}

	if doc.Digest == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDigest)
	}

	return nil
}
