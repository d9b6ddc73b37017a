package querycache

// waitForWrites flushes the ristretto set buffers so tests can observe a
// freshly stored entry.
func (c *Cache) waitForWrites() {
	if c.ristretto != nil {
		c.ristretto.Wait()
	}
}
