package interfaces

import "macro-observer/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defining the interface for sharing data with external systems (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes a refreshed snapshot to all connected listeners.
	Broadcast(state *models.MLatestData)

	// -----------------------------------------------------------------------------
	// UpdateAllDatas replaces the internal state without broadcasting.
	UpdateAllDatas(state *models.MLatestData)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
