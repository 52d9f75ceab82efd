package protocol

// Checksum computes the SDS011 frame checksum: the sum of the given bytes
// truncated to 8 bits. On the wire it covers exactly the 6 payload bytes,
// not the ID byte or the sentinels.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}
