// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import "strings"

// splitWords cuts text into windows of at most size words where adjacent
// windows share overlap words. Empty text yields no windows.
func splitWords(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= 0 {
		size = defaultChunkWords
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(words); start += step {
		end := min(start+size, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// pack groups consecutive texts so that each group stays within limit words.
// A group always holds at least two texts when two remain, so repeated
// packing of summaries shrinks the list even when single texts exceed limit.
func pack(texts []string, limit int) [][]string {
	var groups [][]string
	var cur []string
	words := 0
	for _, t := range texts {
		n := wordCount(t)
		if len(cur) >= 2 && words+n > limit {
			groups = append(groups, cur)
			cur, words = nil, 0
		}
		cur = append(cur, t)
		words += n
	}
	if len(cur) > 0 {
		if len(cur) == 1 && len(groups) > 0 {
			groups[len(groups)-1] = append(groups[len(groups)-1], cur[0])
		} else {
			groups = append(groups, cur)
		}
	}
	return groups
}
