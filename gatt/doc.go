// Package gatt defines the characteristic capability that the DFU engine and the
// GATT services are written against.
//
// # Overview
//
// A CharacteristicAccess reads, writes and subscribes to characteristics
// addressed by UUID. Real implementations live in package ble; tests use the
// simulated peripheral in package dfutest.
//
// # UUIDs
//
// Characteristic and service identifiers are github.com/google/uuid values.
// Bluetooth SIG assigned 16-bit numbers are expanded with UUID16:
//
//	battery := gatt.UUID16(0x2a19) // 00002a19-0000-1000-8000-00805f9b34fb
package gatt
