//go:build unit

package server

// ExecuteShutdown exposes the shutdown sequence to the external test package.
func (sm *ServerManager) ExecuteShutdown() {
	sm.executeShutdown()
}
