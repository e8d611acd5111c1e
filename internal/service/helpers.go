package service

import "strconv"

func formatInt(id int64) string {
	return strconv.FormatInt(id, 10)
}
