// Package services implements the driving ports: analysis, verified
// correction, report access and settings.
//
// Services depend only on domain types and driven ports. Detectors,
// transformers, renderers and stores are injected by the caller.
package services
