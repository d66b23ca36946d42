package letterpress

import "github.com/xraph/letterpress/id"

// ID is the primary identifier type for all Letterpress entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
