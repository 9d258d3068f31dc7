package mysql

// Last write wins: entries for one key carry equivalent content.
const upsertTranslationSQL = `
INSERT INTO translation_cache
  (content_hash, target_lang, original_text, translated_text, source_lang, created_at)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  original_text   = VALUES(original_text),
  translated_text = VALUES(translated_text),
  source_lang     = VALUES(source_lang),
  created_at      = VALUES(created_at)
`

const getTranslationSQL = `
SELECT content_hash, target_lang, original_text, translated_text, source_lang, created_at
FROM translation_cache
WHERE content_hash = ? AND target_lang = ?
`

const countTranslationsSQL = `SELECT COUNT(*) FROM translation_cache`
