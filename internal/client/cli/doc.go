// Package cli provides the Portal Clientes command-line client.
//
// It wires configuration, the local session store, the API client and the
// services, and exposes them two ways: an interactive shell (App.Run) and
// one-shot cobra subcommands (NewRootCmd).
//
// Shell commands:
//   - login / logout / whoami
//   - firstaccess, reset: account recovery flows
//   - sheets, open, search, next, download: spreadsheet browser
//   - admin, createuser, editaccess, deleteuser, upload, deletesheet:
//     admin console, offered only to administrators
//
// Every command ends by printing the single outcome message, if any.
package cli
