//go:build !linux

package notify

func PosterPath(string) string { return "" }
