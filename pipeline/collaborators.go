package pipeline

import (
	"context"

	"github.com/tsawler/reflow/model"
)

// UnreadablePlaceholder replaces a token whose text is dominated by
// replacement characters when no OCR collaborator is configured. The tag
// keeps the token's position in the flow without inventing content.
const UnreadablePlaceholder = "[unreadable]"

// consistencySampleSize caps the source-token sample sent along with a
// consistency check.
const consistencySampleSize = 50

// OCRCollaborator re-recognizes a page whose token stream came back empty
// or dominated by encoding damage. Implementations render the page to an
// image and run it through an OCR engine such as the ocr package's
// Recognizer.
type OCRCollaborator interface {
	RecognizePage(ctx context.Context, page *model.Page) ([]model.Token, error)
}

// ConsistencyChecker gives a second opinion on the final text against a
// sample of the source token texts. The llmverify client satisfies this
// interface. The verdict is advisory: it can only add warnings, never
// change the text.
type ConsistencyChecker interface {
	Check(ctx context.Context, documentID, excerpt string, sample []string) (consistent, usable bool, findings []string, err error)
}
