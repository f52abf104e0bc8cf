package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tsawler/reflow/footnotes"
	"github.com/tsawler/reflow/layout"
	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/tables"
	"github.com/tsawler/reflow/verify"
)

// ErrEmptyDocument is returned when a document contains no tokens on any
// page. It is the only fatal extraction error; page-scoped problems degrade
// the page and are reported as warnings.
var ErrEmptyDocument = errors.New("document contains no tokens")

// Document is the pipeline's input: the parsed pages of one source file
type Document struct {
	// ID identifies the document in logs and artifacts
	ID string

	// Name is the source file name, for reporting
	Name string

	// Pages in page-number order
	Pages []*model.Page
}

// Result is everything one pipeline run produces
type Result struct {
	// Text is the final joined plain text
	Text string

	// PageTexts is the per-page text before joining
	PageTexts []string

	// Inventory is the frozen pre-filter baseline
	Inventory model.Inventory

	// Tables and Footnotes summarize structure extraction
	Tables    []*model.Table
	Footnotes model.FootnoteReport

	// Verification and Quality are the run's assessments
	Verification model.VerificationReport
	Quality      model.QualityReport

	// Warnings are page-scoped degraded conditions
	Warnings []string

	// Attempt is the 1-based remediation attempt that produced this result
	Attempt int
}

// Pipeline runs the full extraction sequence for one document with one
// fixed Config. It is safe for concurrent use across documents; a run
// touches no shared mutable state.
type Pipeline struct {
	config Config
	logger *zap.Logger
}

// New creates a pipeline. A nil logger disables logging.
func New(config Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{config: config, logger: logger}
}

// Config returns the pipeline's parameter set
func (p *Pipeline) Config() Config {
	return p.config
}

// Run executes the full sequence: preprocess, inventory freeze, repeating
// element detection, per-page layout/tables/footnotes/assembly, document
// footnote matching, verification, and scoring. Identical input yields a
// byte-identical Result.
func (p *Pipeline) Run(ctx context.Context, doc *Document) (*Result, error) {
	if doc == nil || totalTokens(doc.Pages) == 0 {
		return nil, ErrEmptyDocument
	}

	result := &Result{Attempt: 1}
	var removals []model.Removal
	encodingAnomalies := 0

	// Preprocess: rotation, dedup, encoding anomalies. Pages are copied so
	// the caller's document is never mutated.
	prepared := make([]*model.Page, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		prep, pageRemovals, anomalies, warnings := p.preparePage(ctx, page)
		prepared = append(prepared, prep)
		removals = append(removals, pageRemovals...)
		encodingAnomalies += anomalies
		result.Warnings = append(result.Warnings, warnings...)
	}

	// The inventory is frozen here, before any filtering, and never
	// recomputed
	analyzer := verify.NewInventoryAnalyzerWithConfig(p.config.Inventory)
	result.Inventory = analyzer.Analyze(prepared)

	detector := layout.NewRepeatingElementDetectorWithConfig(p.config.Repeating)
	signatures := detector.Detect(prepared)
	p.logger.Debug("repeating elements detected",
		zap.String("document", doc.ID),
		zap.Int("signatures", signatures.Len()))

	filter := layout.NewMetadataFilter(p.config.Filter, signatures)
	segmenter := layout.NewColumnSegmenterWithConfig(p.config.Column)
	sorter := layout.NewReadingOrderSorterWithConfig(p.config.Band)
	attacher := layout.NewScriptAttacherWithConfig(p.config.Script)
	fnExtractor := footnotes.NewExtractorWithConfig(p.config.FootnoteExtractor)

	var allMarkers []model.FootnoteMarker
	var allDefinitions []model.FootnoteDefinition
	sourceTexts := make(map[string]bool)
	extractedByRegion := make(map[model.PositionRegion]int)
	extractedTotal := 0
	orderingConsistent := true
	tokenCount := 0

	pageTexts := make([]string, 0, len(prepared))
	for _, page := range prepared {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, tok := range page.Tokens {
			sourceTexts[tok.Text] = true
		}

		if len(page.Tokens) == 0 {
			page.Unextractable = true
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"page %d: empty token stream", page.Number))
			pageTexts = append(pageTexts, "")
			continue
		}

		out := p.processPage(page, filter, segmenter, sorter, attacher, fnExtractor)
		pageTexts = append(pageTexts, out.text)
		removals = append(removals, out.removals...)
		result.Tables = append(result.Tables, out.tables...)
		result.Warnings = append(result.Warnings, out.warnings...)
		allMarkers = append(allMarkers, out.markers...)
		allDefinitions = append(allDefinitions, out.definitions...)

		if !out.ordered {
			orderingConsistent = false
		}
		extractedTotal += out.extracted
		tokenCount += out.extracted
		for region, n := range analyzer.Census(out.extractedTokens, page.Height) {
			extractedByRegion[region] += n
		}
	}

	matcher := footnotes.NewMatcherWithConfig(p.config.FootnoteMatcher)
	result.Footnotes = matcher.Match(allMarkers, allDefinitions)

	verifier := verify.NewVerifierWithConfig(p.config.Verifier)
	cleaned, vreport := verifier.Verify(verify.Input{
		PageTexts:         pageTexts,
		SourceTexts:       sourceTexts,
		Inventory:         result.Inventory,
		ExtractedTotal:    extractedTotal,
		ExtractedByRegion: extractedByRegion,
		Footnotes:         result.Footnotes,
	})
	vreport.FootnoteMatchRate = result.Footnotes.MatchRate()
	vreport.TableConfidence = averageConfidence(result.Tables)
	vreport.OrderingConsistent = orderingConsistent
	vreport.Removals = removals
	result.Verification = vreport
	result.PageTexts = cleaned

	if n := len(vreport.Flags); n > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%d hallucinated spans stripped", n))
	}

	scorer := verify.NewQualityScorer()
	result.Quality = scorer.Score(verify.ScoreInput{
		Verification:       result.Verification,
		Tables:             derefTables(result.Tables),
		Footnotes:          result.Footnotes,
		PageCount:          len(prepared),
		UnextractablePages: countUnextractable(prepared),
		EncodingAnomalies:  encodingAnomalies,
		TokenCount:         tokenCount,
	})

	result.Text = p.joinPages(cleaned, prepared)

	if p.config.Consistency != nil {
		p.crossCheck(ctx, doc, result, sourceTexts)
	}

	p.logger.Info("document extracted",
		zap.String("document", doc.ID),
		zap.Float64("coverage", result.Verification.Coverage),
		zap.Float64("score", result.Quality.Score),
		zap.String("grade", string(result.Quality.Grade)))
	return result, nil
}

// crossCheck asks the consistency collaborator for a second opinion on the
// final text. The verdict only ever adds warnings; a failed or
// low-confidence call degrades to no opinion.
func (p *Pipeline) crossCheck(ctx context.Context, doc *Document, result *Result, sourceTexts map[string]bool) {
	sample := make([]string, 0, len(sourceTexts))
	for text := range sourceTexts {
		sample = append(sample, text)
	}
	sort.Strings(sample)
	if len(sample) > consistencySampleSize {
		sample = sample[:consistencySampleSize]
	}

	consistent, usable, findings, err := p.config.Consistency.Check(ctx, doc.ID, result.Text, sample)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"consistency check failed: %v", err))
	case !usable:
		result.Warnings = append(result.Warnings,
			"consistency check verdict below confidence cutoff, ignored")
	case !consistent:
		result.Warnings = append(result.Warnings,
			"consistency check flagged the output")
		result.Warnings = append(result.Warnings, findings...)
	}
}

// preparePage copies a page, normalizes rotation, drops overlapping
// duplicates, and counts encoding anomalies. An empty or garbled page goes
// to the OCR collaborator when one is configured; without one, garbled
// tokens keep their position under a placeholder tag.
func (p *Pipeline) preparePage(ctx context.Context, page *model.Page) (*model.Page, []model.Removal, int, []string) {
	prep := &model.Page{
		Number:   page.Number,
		Width:    page.Width,
		Height:   page.Height,
		Segments: page.Segments,
		Rotation: page.Rotation,
	}
	var warnings []string

	tokens := make([]model.Token, len(page.Tokens))
	copy(tokens, page.Tokens)

	if page.Rotation != 0 {
		normalized, err := layout.NormalizeRotation(tokens, page.Rotation, page.Width, page.Height)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"page %d: %v, coordinates left as-is", page.Number, err))
		} else {
			tokens = normalized
			if page.Rotation == 90 || page.Rotation == 270 {
				prep.Width, prep.Height = page.Height, page.Width
			}
			prep.Rotation = 0
		}
	}

	model.SortTokens(tokens)
	kept, removals := p.dedupOverlapping(tokens)

	anomalies := 0
	for _, tok := range kept {
		if replacementRatio(tok.Text) > p.config.ReplacementRatio {
			anomalies++
		}
	}

	if p.config.OCR != nil && (len(kept) == 0 || anomalies > 0) {
		recognized, err := p.config.OCR.RecognizePage(ctx, page)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf(
				"page %d: OCR fallback failed: %v", page.Number, err))
		case len(recognized) > 0:
			kept = make([]model.Token, len(recognized))
			copy(kept, recognized)
			model.SortTokens(kept)
			anomalies = 0
			warnings = append(warnings, fmt.Sprintf(
				"page %d: recovered via OCR", page.Number))
		}
	}

	if anomalies > 0 {
		for i := range kept {
			if replacementRatio(kept[i].Text) > p.config.ReplacementRatio {
				kept[i].Text = UnreadablePlaceholder
			}
		}
		warnings = append(warnings, fmt.Sprintf(
			"page %d: %d tokens dominated by replacement characters", page.Number, anomalies))
	}

	prep.Tokens = kept
	return prep, removals, anomalies, warnings
}

// replacementRatio is the fraction of a string's runes that decode as the
// Unicode replacement character. Invalid UTF-8 bytes decode to it as well.
func replacementRatio(s string) float64 {
	if s == "" {
		return 0
	}
	total, damaged := 0, 0
	for _, r := range s {
		total++
		if r == utf8.RuneError {
			damaged++
		}
	}
	return float64(damaged) / float64(total)
}

// dedupOverlapping drops tokens with identical text and heavy bbox overlap
// with an earlier token. Shadow text from double-rendered content shows up
// this way.
func (p *Pipeline) dedupOverlapping(tokens []model.Token) ([]model.Token, []model.Removal) {
	kept := make([]model.Token, 0, len(tokens))
	var removals []model.Removal

	for _, tok := range tokens {
		dup := false
		for i := len(kept) - 1; i >= 0; i-- {
			prev := kept[i]
			// Tokens are top-sorted; once we pass the vertical extent of
			// the candidate, no earlier token can overlap it
			if prev.BBox.Y1 < tok.BBox.Y0 {
				break
			}
			if prev.Text == tok.Text && prev.BBox.IoU(tok.BBox) > p.config.DedupIoU {
				dup = true
				break
			}
		}
		if dup {
			removals = append(removals, model.Removal{
				Text:   tok.Text,
				Page:   tok.Page,
				Reason: model.RemovedDuplicate,
			})
			continue
		}
		kept = append(kept, tok)
	}
	return kept, removals
}

// pageOutput is everything processPage produces for one page
type pageOutput struct {
	text            string
	removals        []model.Removal
	tables          []*model.Table
	warnings        []string
	markers         []model.FootnoteMarker
	definitions     []model.FootnoteDefinition
	extracted       int
	extractedTokens []model.Token
	ordered         bool
}

// processPage runs layout, tables, filtering, scripts, footnotes, and
// assembly for one non-empty page.
func (p *Pipeline) processPage(
	page *model.Page,
	filter *layout.MetadataFilter,
	segmenter *layout.ColumnSegmenter,
	sorter *layout.ReadingOrderSorter,
	attacher *layout.ScriptAttacher,
	fnExtractor *footnotes.Extractor,
) pageOutput {
	out := pageOutput{ordered: true}

	pageTables, tableWarnings, err := tables.Detect(page, page.Tokens, p.config.Table)
	if err != nil {
		out.warnings = append(out.warnings, fmt.Sprintf(
			"page %d: table detection failed: %v", page.Number, err))
	}
	out.tables = pageTables
	for _, w := range tableWarnings {
		out.warnings = append(out.warnings, fmt.Sprintf("page %d: %s", page.Number, w))
	}

	outside, inside := tables.ExcludeTableTokens(page.Tokens, pageTables)
	for _, tok := range inside {
		out.removals = append(out.removals, model.Removal{
			Text:   tok.Text,
			Page:   tok.Page,
			Reason: model.RemovedTableInterior,
		})
	}

	kept, filterRemovals := filter.Filter(outside, page.Height)
	out.removals = append(out.removals, filterRemovals...)

	columns := layout.BuildColumns(kept, segmenter, sorter)
	for i := range columns {
		columns[i].Bands = attacher.Attach(columns[i].Bands)
	}
	page.Columns = columns

	markers, definitions := fnExtractor.Extract(kept, page.Height, page.Number)
	out.markers = markers
	out.definitions = definitions
	page.Markers = markers
	page.Definitions = definitions
	page.Tables = pageTables

	for _, col := range columns {
		if !bandsOrdered(col.Bands) {
			out.ordered = false
		}
	}

	// Extraction is counted on the tokens that survived filtering, before
	// script attachment merges sub/superscripts into their hosts. Table
	// cell content counts as extracted too.
	out.extracted = len(kept) + len(inside)
	out.extractedTokens = append(out.extractedTokens, kept...)
	out.extractedTokens = append(out.extractedTokens, inside...)

	out.text = p.assemblePage(columns, pageTables)
	return out
}

// assemblePage renders the page's text. Columns are emitted strictly in
// left-to-right reading order; each table is interleaved into the flow of
// the column it overlaps, at the table's vertical position. Tables on a
// page with no columns are emitted top to bottom.
func (p *Pipeline) assemblePage(columns []model.Column, pageTables []*model.Table) string {
	formatter := tables.NewFormatter()

	assigned := make([][]*model.Table, len(columns))
	var standalone []*model.Table
	for _, tbl := range pageTables {
		idx := columnFor(tbl, columns)
		if idx < 0 {
			standalone = append(standalone, tbl)
			continue
		}
		assigned[idx] = append(assigned[idx], tbl)
	}

	var parts []string
	for i, col := range columns {
		if text := p.columnFlow(col, assigned[i], formatter); text != "" {
			parts = append(parts, text)
		}
	}

	sort.SliceStable(standalone, func(i, j int) bool {
		if standalone[i].BBox.Y0 != standalone[j].BBox.Y0 {
			return standalone[i].BBox.Y0 < standalone[j].BBox.Y0
		}
		return standalone[i].BBox.X0 < standalone[j].BBox.X0
	})
	for _, tbl := range standalone {
		if text := strings.TrimRight(formatter.Format(tbl), "\n"); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// columnFor picks the column sharing the most horizontal extent with the
// table, falling back to the nearest column center when the table overlaps
// none. Returns -1 only when the page has no columns.
func columnFor(tbl *model.Table, columns []model.Column) int {
	if len(columns) == 0 {
		return -1
	}

	best, bestOverlap := -1, 0.0
	for i, col := range columns {
		if o := tbl.BBox.HorizontalOverlap(col.BBox); o > bestOverlap {
			best, bestOverlap = i, o
		}
	}
	if best >= 0 {
		return best
	}

	cx := tbl.BBox.Center().X
	bestDist := math.Inf(1)
	for i, col := range columns {
		if d := math.Abs(col.BBox.Center().X - cx); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// flowItem is one vertically positioned unit of a column's flow: a band
// line or a formatted table.
type flowItem struct {
	top   float64
	text  string
	table bool
}

// columnFlow renders a column's bands and tables as one flow ordered by top
// edge, so a table re-enters the text between the lines that surround it.
func (p *Pipeline) columnFlow(col model.Column, tbls []*model.Table, formatter *tables.Formatter) string {
	items := make([]flowItem, 0, len(col.Bands)+len(tbls))
	for _, band := range col.Bands {
		if line := p.bandText(band); line != "" {
			items = append(items, flowItem{top: band.Top, text: line})
		}
	}
	for _, tbl := range tbls {
		if text := strings.TrimRight(formatter.Format(tbl), "\n"); text != "" {
			items = append(items, flowItem{top: tbl.BBox.Y0, text: text, table: true})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].top < items[j].top })

	var chunks []string
	var lines []string
	flush := func() {
		if len(lines) > 0 {
			chunks = append(chunks, strings.Join(lines, "\n"))
			lines = nil
		}
	}
	for _, it := range items {
		if it.table {
			flush()
			chunks = append(chunks, it.text)
			continue
		}
		lines = append(lines, it.text)
	}
	flush()
	return strings.Join(chunks, "\n\n")
}

// bandText joins a band's tokens applying the spacing heuristic: CJK runs
// join without spaces, Latin words separate when the gap is wide enough
// relative to the font size.
func (p *Pipeline) bandText(band model.Band) string {
	var sb strings.Builder
	for i, tok := range band.Tokens {
		if i > 0 {
			prev := band.Tokens[i-1]
			if needsSpace(prev, tok, p.config.SpaceGapRatio) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(tok.Text)
	}
	return strings.TrimSpace(sb.String())
}

// needsSpace decides whether a space belongs between two adjacent tokens
func needsSpace(prev, cur model.Token, gapRatio float64) bool {
	if prev.Text == "" || cur.Text == "" {
		return false
	}
	last := lastRune(prev.Text)
	first := firstRune(cur.Text)
	if isCJK(last) && isCJK(first) {
		return false
	}

	gap := cur.BBox.X0 - prev.BBox.X1
	size := prev.FontSize
	if size <= 0 {
		size = cur.FontSize
	}
	if size <= 0 {
		return gap > 0
	}
	return gap > gapRatio*size
}

func isCJK(r rune) bool {
	return unicode.In(r,
		unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

// bandsOrdered reports whether band tops never regress within a column
func bandsOrdered(bands []model.Band) bool {
	for i := 1; i < len(bands); i++ {
		if bands[i].Top < bands[i-1].Top {
			return false
		}
	}
	return true
}

// joinPages concatenates cleaned page texts, optionally with page boundary
// markers.
func (p *Pipeline) joinPages(pageTexts []string, pages []*model.Page) string {
	parts := make([]string, 0, len(pageTexts))
	for i, text := range pageTexts {
		if p.config.PageMarkers {
			parts = append(parts, fmt.Sprintf("[page %d]\n%s", pages[i].Number, text))
			continue
		}
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}

func totalTokens(pages []*model.Page) int {
	n := 0
	for _, page := range pages {
		n += len(page.Tokens)
	}
	return n
}

func countUnextractable(pages []*model.Page) int {
	n := 0
	for _, page := range pages {
		if page.Unextractable {
			n++
		}
	}
	return n
}

func averageConfidence(tbls []*model.Table) float64 {
	if len(tbls) == 0 {
		return 1.0
	}
	var sum float64
	for _, t := range tbls {
		sum += t.Confidence
	}
	return sum / float64(len(tbls))
}

func derefTables(tbls []*model.Table) []model.Table {
	out := make([]model.Table, 0, len(tbls))
	for _, t := range tbls {
		out = append(out, *t)
	}
	return out
}
