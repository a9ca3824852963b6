package server

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}
