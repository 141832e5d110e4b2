// Copyright 2017-25 the original author or authors.
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

package osmpbf

import (
	"context"

	"github.com/tilecore/osmpbf/model"
)

// ComputeBoundingBox scans every remaining node in the file via Iterate
// and folds its coordinates into a BoundingBox, for files whose
// HeaderBlock omits one (optional per the format; some writers skip it).
// It consumes the parser's position exactly like any other Iterate call,
// so it is normally run over a file opened (and, if partial coverage is
// acceptable, Seek'd) for that purpose alone.
func (p *Parser) ComputeBoundingBox(ctx context.Context) (*model.BoundingBox, error) {
	bbox := model.InitialBoundingBox()

	err := p.Iterate(ctx, func(e model.Entity) error {
		if n, ok := e.(model.Node); ok {
			bbox.ExpandWithLatLng(n.Lat, n.Lon)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return bbox, nil
}
