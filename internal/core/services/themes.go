package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bookforge-labs/bookforge-cli/internal/core/domain"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driven"
	"github.com/bookforge-labs/bookforge-cli/internal/core/ports/driving"
	"github.com/bookforge-labs/bookforge-cli/internal/logger"
)

// Ensure ThemeService implements the interface.
var _ driving.ThemeService = (*ThemeService)(nil)

// maxClusterIterations caps the k-means refinement loop.
const maxClusterIterations = 20

// labelSampleCount is how many representative chunks are shown to the LLM
// when labelling a theme.
const labelSampleCount = 3

// labelSampleChars truncates each representative chunk for the prompt.
const labelSampleChars = 300

// keywordCount is how many characteristic terms each theme carries.
const keywordCount = 5

// themeToken extracts candidate keyword tokens from chunk text.
var themeToken = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_-]{3,}`)

// keywordStopwords excludes terms too common to characterise a cluster.
var keywordStopwords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "before": true,
	"being": true, "between": true, "both": true, "column": true, "could": true,
	"does": true, "each": true, "from": true, "have": true, "into": true,
	"more": true, "most": true, "other": true, "over": true, "same": true,
	"some": true, "such": true, "than": true, "that": true, "their": true,
	"them": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "those": true, "through": true, "under": true, "very": true,
	"were": true, "what": true, "when": true, "where": true, "which": true,
	"while": true, "will": true, "with": true, "would": true, "your": true,
}

// ThemeService discovers thematic clusters across stored chunk embeddings.
//
// Clustering is deterministic: farthest-point initial centroids and a fixed
// iteration cap mean the same store contents always partition the same way.
// Only the LLM labelling step is non-deterministic, and its failure degrades
// to a positional default label rather than aborting discovery.
type ThemeService struct {
	vectorStore driven.VectorStore
	llm         driven.LLMService
	prompts     driven.PromptStore
}

// NewThemeService creates a new theme service.
func NewThemeService(
	vectorStore driven.VectorStore,
	llm driven.LLMService,
	prompts driven.PromptStore,
) *ThemeService {
	return &ThemeService{
		vectorStore: vectorStore,
		llm:         llm,
		prompts:     prompts,
	}
}

// DiscoverThemes partitions all stored chunks into at most n themes and
// labels each via the LLM. Every stored chunk is assigned to exactly one
// theme.
func (s *ThemeService) DiscoverThemes(ctx context.Context, n int) ([]domain.Theme, error) {
	if n <= 0 {
		return nil, fmt.Errorf("theme count must be positive: %w", domain.ErrInvalidInput)
	}

	chunks, err := s.vectorStore.GetEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	if len(chunks) == 0 {
		return nil, domain.ErrNoThemes
	}

	k := n
	if k > len(chunks) {
		k = len(chunks)
	}

	logger.Section("Theme Discovery")
	logger.Debug("Clustering %d chunks into %d themes", len(chunks), k)

	assignments, centroids := cluster(chunks, k)

	// Group member indices per cluster, keeping insertion order.
	members := make([][]int, k)
	for i, c := range assignments {
		members[c] = append(members[c], i)
	}

	// Largest clusters first; stable so equal sizes keep centroid order.
	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(members[order[a]]) > len(members[order[b]])
	})

	result := make([]domain.Theme, 0, k)
	for rank, c := range order {
		if len(members[c]) == 0 {
			continue
		}

		chunkIDs := make([]string, len(members[c]))
		texts := make([]string, len(members[c]))
		for i, idx := range members[c] {
			chunkIDs[i] = chunks[idx].ID
			texts[i] = chunks[idx].Content
		}

		theme := domain.Theme{
			ID:              themeID(chunkIDs),
			ChunkIDs:        chunkIDs,
			Keywords:        topKeywords(texts, keywordCount),
			ImportanceScore: float64(len(chunkIDs)) / float64(len(chunks)),
		}

		label, description, err := s.labelCluster(ctx, representatives(chunks, members[c], centroids[c]))
		if err != nil {
			logger.Warn("Labelling theme %d failed: %v", rank+1, err)
			label = fmt.Sprintf("Theme %d", rank+1)
			description = ""
		}
		theme.Label = label
		theme.Description = description

		result = append(result, theme)
	}

	logger.Info("Discovered %d themes", len(result))
	return result, nil
}

// labelCluster asks the LLM to name a cluster from representative samples.
// Returns an error when the LLM call fails or its response has no theme line.
func (s *ThemeService) labelCluster(ctx context.Context, samples []string) (string, string, error) {
	system, user, err := s.prompts.Render(driven.PromptThemeLabeling, map[string]string{
		"samples": strings.Join(samples, "\n\n"),
	})
	if err != nil {
		return "", "", err
	}

	response, err := s.llm.Generate(ctx, system, user, driven.GenerateOptions{
		MaxTokens:   200,
		Temperature: 0.2,
	})
	if err != nil {
		return "", "", err
	}

	label, description := parseThemeLabel(response)
	if label == "" {
		return "", "", fmt.Errorf("no theme line in response")
	}
	return label, description, nil
}

// parseThemeLabel extracts the "Theme:" and "Description:" lines from a
// labelling response. Missing lines yield empty strings.
func parseThemeLabel(response string) (label, description string) {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(strings.ToLower(line), "theme:"):
			label = strings.TrimSpace(line[len("theme:"):])
		case strings.HasPrefix(strings.ToLower(line), "description:"):
			description = strings.TrimSpace(line[len("description:"):])
		}
	}
	return label, description
}

// themeID derives a deterministic theme identifier from the sorted member
// chunk IDs, so the same partition always names the same themes.
func themeID(chunkIDs []string) string {
	sorted := make([]string, len(chunkIDs))
	copy(sorted, chunkIDs)
	sort.Strings(sorted)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("bookforge:theme:"+strings.Join(sorted, ","))).String()
}

// representatives returns up to labelSampleCount member texts closest to the
// centroid, truncated for the labelling prompt.
func representatives(chunks []domain.Chunk, member []int, centroid []float32) []string {
	type scored struct {
		idx int
		sim float64
	}
	scoredMembers := make([]scored, len(member))
	for i, idx := range member {
		scoredMembers[i] = scored{idx: idx, sim: dot(chunks[idx].Embedding, centroid)}
	}
	sort.SliceStable(scoredMembers, func(a, b int) bool {
		return scoredMembers[a].sim > scoredMembers[b].sim
	})

	count := labelSampleCount
	if count > len(scoredMembers) {
		count = len(scoredMembers)
	}

	samples := make([]string, count)
	for i := 0; i < count; i++ {
		text := chunks[scoredMembers[i].idx].Content
		if len(text) > labelSampleChars {
			text = text[:labelSampleChars]
		}
		samples[i] = text
	}
	return samples
}

// topKeywords counts token frequency across member texts and returns the
// most frequent terms, ties broken alphabetically.
func topKeywords(texts []string, n int) []string {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, token := range themeToken.FindAllString(strings.ToLower(text), -1) {
			if keywordStopwords[token] {
				continue
			}
			counts[token]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(a, b int) bool {
		if counts[terms[a]] != counts[terms[b]] {
			return counts[terms[a]] > counts[terms[b]]
		}
		return terms[a] < terms[b]
	})

	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// ==================== Clustering ====================

// cluster partitions chunk embeddings into k groups with deterministic
// k-means: farthest-point initialisation, cosine assignment, mean centroids,
// empty clusters reseeded from the farthest point overall.
func cluster(chunks []domain.Chunk, k int) (assignments []int, centroids [][]float32) {
	dims := len(chunks[0].Embedding)

	centroids = initialCentroids(chunks, k)
	assignments = make([]int, len(chunks))

	for iter := 0; iter < maxClusterIterations; iter++ {
		changed := false

		// Assignment step: nearest centroid by cosine similarity.
		for i := range chunks {
			best, bestSim := 0, dot(chunks[i].Embedding, centroids[0])
			for c := 1; c < k; c++ {
				if sim := dot(chunks[i].Embedding, centroids[c]); sim > bestSim {
					best, bestSim = c, sim
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		// Update step: mean of members, renormalised.
		sums := make([][]float64, k)
		sizes := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, c := range assignments {
			for d, v := range chunks[i].Embedding {
				sums[c][d] += float64(v)
			}
			sizes[c]++
		}
		for c := 0; c < k; c++ {
			if sizes[c] == 0 {
				// Reseed empty clusters from the least-covered point.
				centroids[c] = chunks[farthestFrom(chunks, centroids)].Embedding
				continue
			}
			centroids[c] = normalisedMean(sums[c], sizes[c])
		}
	}

	return assignments, centroids
}

// initialCentroids seeds k-means with the first chunk, then repeatedly the
// point farthest from every chosen centroid. Deterministic by construction.
func initialCentroids(chunks []domain.Chunk, k int) [][]float32 {
	centroids := make([][]float32, 0, k)
	centroids = append(centroids, chunks[0].Embedding)
	for len(centroids) < k {
		centroids = append(centroids, chunks[farthestFrom(chunks, centroids)].Embedding)
	}
	return centroids
}

// farthestFrom returns the index of the chunk with the lowest maximum
// similarity to any centroid. First index wins ties.
func farthestFrom(chunks []domain.Chunk, centroids [][]float32) int {
	best, bestSim := 0, 2.0
	for i := range chunks {
		maxSim := -2.0
		for _, c := range centroids {
			if sim := dot(chunks[i].Embedding, c); sim > maxSim {
				maxSim = sim
			}
		}
		if maxSim < bestSim {
			best, bestSim = i, maxSim
		}
	}
	return best
}

// normalisedMean converts a component sum into a unit-length centroid.
func normalisedMean(sum []float64, size int) []float32 {
	var norm float64
	for _, v := range sum {
		mean := v / float64(size)
		norm += mean * mean
	}
	out := make([]float32, len(sum))
	if norm == 0 {
		return out
	}
	scale := math.Sqrt(norm)
	for d := range sum {
		out[d] = float32((sum[d] / float64(size)) / scale)
	}
	return out
}

// dot computes the dot product of two equal-length vectors.
// With unit vectors this equals cosine similarity.
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
