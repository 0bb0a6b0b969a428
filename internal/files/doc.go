// Package files provides file discovery and atomic file writes.
//
// Discovery finds dataset CSVs in an input directory, tolerating differences
// in file-name case. Manager writes report and export files through a temp
// file and rename.
//
// Example usage:
//
//	discovery := files.NewDiscovery("")
//	orders, err := discovery.FindDataset("downloads", domain.EntityOrders)
//
//	manager := files.NewManager(logger)
//	err = manager.WriteFile("response.json", data)
package files
