package contextbuild

// TruncateAt exposes the boundary-preferring cut so tests can drive it
// directly.
var TruncateAt = truncateAt
