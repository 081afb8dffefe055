package language

import (
	"context"
	"fmt"

	"go-book-study/pkg/models"
)

// DemoClient returns canned content so the whole pipeline and report
// flow can be exercised without any credential or local OCR install.
type DemoClient struct{}

// NewDemoClient creates the demo backend.
func NewDemoClient() *DemoClient {
	return &DemoClient{}
}

// ExtractText returns a fixed English paragraph per page.
func (c *DemoClient) ExtractText(ctx context.Context, page models.PageImage) (string, error) {
	return fmt.Sprintf(`Demo Text (page %d)
This is a demonstration version of the English book study app.
The actual text extraction and translation run against the remote
analysis service once a credential is configured.`, page.Index+1), nil
}

// Translate returns a fixed Japanese paragraph.
func (c *DemoClient) Translate(ctx context.Context, text string) (string, error) {
	return `デモテキスト（日本語）
これは英語本学習アプリのデモンストレーション版です。
実際のテキスト抽出と翻訳は、認証情報を設定すると外部解析サービスで実行されます。`, nil
}

// ExtractVocabulary returns a fenced JSON payload, the same shape real
// model replies arrive in.
func (c *DemoClient) ExtractVocabulary(ctx context.Context, text string) (string, error) {
	return "Here is the vocabulary list:\n```json\n" + `{"words": [
  {"word": "demonstration",
   "definition": "実演、デモンストレーション",
   "example": "This is a demonstration of the app.",
   "example_translation": "これはアプリのデモンストレーションです。",
   "level": "intermediate"},
  {"word": "translation",
   "definition": "翻訳",
   "example": "Translation is an important skill.",
   "example_translation": "翻訳は重要なスキルです。",
   "level": "beginner"}
]}` + "\n```", nil
}

// ExtractGrammarPatterns returns a bare JSON payload.
func (c *DemoClient) ExtractGrammarPatterns(ctx context.Context, text string) (string, error) {
	return `{"patterns": [
  {"pattern": "this is + noun phrase",
   "example": "This is a demonstration version of the English book study app.",
   "structure": "This + is + noun phrase",
   "usage": "目の前のものを紹介・説明するときの基本構文です。",
   "level": "beginner",
   "more_examples": ["This is my favorite book.", "This is the main entrance."]}
]}`, nil
}

// Backend returns the backend name
func (c *DemoClient) Backend() string {
	return "demo"
}

// Close releases client resources
func (c *DemoClient) Close() error {
	return nil
}
