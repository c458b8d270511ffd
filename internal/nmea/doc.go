package nmea

// Package nmea renders simulated fixes as NMEA 0183 sentences.
//
// It is intentionally small and write-only:
// - RMC for position/ground speed
// - GGA for altitude and fix quality
// - VTG for ground speed
// There is no parsing surface; downstream nav software is the consumer.
