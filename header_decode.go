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
	"time"

	"github.com/tilecore/osmpbf/internal/pb"
	"github.com/tilecore/osmpbf/model"
)

// parseOSMHeader unmarshals the sole payload of a file's "OSMHeader"
// fileblock into the module's public Header type.
func parseOSMHeader(buffer []byte) (*model.Header, error) {
	hb := &pb.HeaderBlock{}
	if err := hb.Unmarshal(buffer); err != nil {
		return nil, err
	}

	header := &model.Header{
		RequiredFeatures:                 hb.RequiredFeatures,
		OptionalFeatures:                 hb.OptionalFeatures,
		WritingProgram:                   hb.Writingprogram,
		Source:                           hb.Source,
		OsmosisReplicationBaseURL:        hb.OsmosisReplicationBaseURL,
		OsmosisReplicationSequenceNumber: hb.OsmosisReplicationSequenceNumber,
	}

	if hb.Bbox != nil {
		// the header bounding box is stored in plain nanodegrees, i.e.
		// offset 0 and granularity 1 in the ToDegrees formula.
		header.BoundingBox = &model.BoundingBox{
			Left:   model.ToDegrees(0, 1, hb.Bbox.Left),
			Right:  model.ToDegrees(0, 1, hb.Bbox.Right),
			Top:    model.ToDegrees(0, 1, hb.Bbox.Top),
			Bottom: model.ToDegrees(0, 1, hb.Bbox.Bottom),
		}
	} else {
		// an unset bbox is represented as an empty bounding box mapping,
		// not a null one.
		header.BoundingBox = &model.BoundingBox{}
	}

	if hb.HasReplicationTimestamp {
		header.OsmosisReplicationTimestamp = time.Unix(hb.OsmosisReplicationTimestamp, 0).UTC()
	}

	return header, nil
}
