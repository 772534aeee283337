// Copyright 2026 © The Aide Authors
// SPDX-License-Identifier: Apache-2.0

package intent

import (
	"math"
	"strings"
)

// model is a multinomial naive Bayes classifier over bag-of-words
// features, trained once at construction from a small seed corpus.
type model struct {
	labels      []string
	priors      map[string]float64
	tokenCounts map[string]map[string]float64
	totalTokens map[string]float64
	vocab       map[string]struct{}
}

func trainModel(examples map[string][]string) *model {
	m := &model{
		priors:      make(map[string]float64),
		tokenCounts: make(map[string]map[string]float64),
		totalTokens: make(map[string]float64),
		vocab:       make(map[string]struct{}),
	}

	total := 0
	for label, texts := range examples {
		m.labels = append(m.labels, label)
		m.tokenCounts[label] = make(map[string]float64)
		for _, text := range texts {
			for _, token := range tokenize(text) {
				m.tokenCounts[label][token]++
				m.totalTokens[label]++
				m.vocab[token] = struct{}{}
			}
		}
		total += len(texts)
	}
	for label, texts := range examples {
		m.priors[label] = float64(len(texts)) / float64(total)
	}
	return m
}

// predict returns the most likely label with a normalized posterior in
// [0,1]. Unseen tokens are Laplace-smoothed so prediction never fails.
func (m *model) predict(tokens []string) (string, float64) {
	if len(m.labels) == 0 || len(tokens) == 0 {
		return "", 0
	}

	vocabSize := float64(len(m.vocab))
	logPosteriors := make(map[string]float64, len(m.labels))
	for _, label := range m.labels {
		score := math.Log(m.priors[label])
		for _, token := range tokens {
			count := m.tokenCounts[label][token]
			score += math.Log((count + 1) / (m.totalTokens[label] + vocabSize))
		}
		logPosteriors[label] = score
	}

	best, maxLog := "", math.Inf(-1)
	for label, score := range logPosteriors {
		if score > maxLog || (score == maxLog && label < best) {
			best, maxLog = label, score
		}
	}

	// Normalize in log space for a confidence in [0,1].
	var sum float64
	for _, score := range logPosteriors {
		sum += math.Exp(score - maxLog)
	}
	return best, 1 / sum
}

func tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		}
		return true
	})
}

// seedExamples is the initial training corpus for the statistical model.
// The label set is closed but extensible through Config.ExtraExamples.
func seedExamples() map[string][]string {
	return map[string][]string{
		"greeting": {
			"hello", "hi", "hey", "good morning", "good evening",
			"what's up", "howdy", "greetings", "hi there",
		},
		"farewell": {
			"bye", "goodbye", "see you later", "quit", "exit",
			"farewell", "take care", "good night",
		},
		"get_weather": {
			"what's the weather", "how's the weather", "is it raining",
			"temperature outside", "weather forecast", "weather today",
		},
		"get_news": {
			"news", "headlines", "what's happening", "latest news",
			"current events", "tell me the news",
		},
		"search_web": {
			"search for golang tutorials", "look up the capital of france",
			"find information about quantum computing", "what is kubernetes",
			"who is alan turing", "tell me about neural networks",
		},
		"system_check": {
			"check cpu", "memory usage", "disk space", "system status",
			"what's running", "show processes", "check battery",
		},
		"system_control": {
			"open the browser", "close the window", "start the server",
			"stop the service", "launch file manager", "run the script",
		},
		"port_scan": {
			"scan the network", "scan ports on the router",
			"run a port scan", "check open ports", "sweep the subnet",
		},
		"deploy": {
			"deploy the app", "restart the container", "build the image",
			"roll out the new version", "manage docker containers",
		},
		"set_reminder": {
			"remind me to call mom", "set a reminder", "don't forget",
			"remember to buy milk", "alert me at five",
		},
		"play_music": {
			"play music", "play a song", "pause the music", "next song",
			"turn up the volume",
		},
		"conversation": {
			"how are you", "what are you doing", "who are you",
			"tell me something interesting", "what do you think",
			"tell me a joke", "make me laugh",
		},
		"help": {
			"help", "what can you do", "list commands", "show instructions",
			"what's available",
		},
	}
}
