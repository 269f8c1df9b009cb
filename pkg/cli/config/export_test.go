package config

// ParseGCSLocation is exported for testing
var ParseGCSLocation = parseGCSLocation

// ReadSource is exported for testing
var ReadSource = readSource
