package core

// Place picks the worker for a batch by round robin over the ordered worker list.
func Place(batchIndex int, workers []string) (string, error) {
	if len(workers) == 0 {
		return "", ErrNoWorkersAvailable
	}
	i := batchIndex % len(workers)
	if i < 0 {
		i += len(workers)
	}
	return workers[i], nil
}
