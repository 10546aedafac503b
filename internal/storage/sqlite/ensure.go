package sqlite

import "github.com/felixgeelhaar/mathdrill/internal/worksheet"

var _ worksheet.Store = (*WorksheetStore)(nil)
