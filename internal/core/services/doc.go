// Package services contains the core business logic implementations.
// Services implement the driving ports and depend only on driven ports,
// never on concrete adapters.
package services
