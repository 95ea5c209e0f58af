package ui

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when neither the query nor Accept-Language match
const DefaultLanguage = "en"

// Localization manages page text translations
type Localization struct {
	texts   map[string]map[string]string
	matcher language.Matcher
	codes   []string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyTagline           = "tagline"
	KeyEnterURL          = "enter_url"
	KeyGetInfo           = "get_info"
	KeyDownload          = "download"
	KeyAddToQueue        = "add_to_queue"
	KeyQualityPreset     = "quality_preset"
	KeyQualityBest       = "quality_best"
	KeyQualityMedium     = "quality_medium"
	KeyQualityAudio      = "quality_audio"
	KeyCompress          = "compress"
	KeyFormats           = "formats"
	KeyResolutions       = "resolutions"
	KeyDuration          = "duration"
	KeySize              = "size"
	KeyDescription       = "description"
	KeyPlaylist          = "playlist"
	KeyTasks             = "tasks"
	KeyStop              = "stop"
	KeyRemove            = "remove"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyLoading           = "loading"
	KeyPleaseEnterURL    = "please_enter_url"
	KeyAlreadyInQueue    = "already_in_queue"
	KeyTaskAdded         = "task_added"
	KeyDownloadStarted   = "download_started"
	KeyDownloadCompleted = "download_completed"
	KeyErrorPrefix       = "error_prefix"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		texts: make(map[string]map[string]string),
		codes: []string{"en", "ru", "pt"},
	}

	tags := make([]language.Tag, 0, len(l.codes))
	for _, code := range l.codes {
		tags = append(tags, language.Make(code))
	}
	l.matcher = language.NewMatcher(tags)

	l.initializeTexts()
	return l
}

// Resolve picks the page language: an explicit query value wins, then the
// best Accept-Language match, then English.
func (l *Localization) Resolve(query, acceptLanguage string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	if _, exists := l.texts[query]; exists {
		return query
	}

	if acceptLanguage == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, index, confidence := l.matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage
	}
	return l.codes[index]
}

// GetText returns localized text for the given key
func (l *Localization) GetText(lang, key string) string {
	if texts, exists := l.texts[lang]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts[DefaultLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// Texts returns every text of lang with English filling the gaps
func (l *Localization) Texts(lang string) map[string]string {
	out := make(map[string]string, len(l.texts[DefaultLanguage]))
	for key := range l.texts[DefaultLanguage] {
		out[key] = l.GetText(lang, key)
	}
	return out
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "YT Downloader",
		KeyTagline:           "Paste a video link, inspect its formats and download it.",
		KeyEnterURL:          "Enter YouTube URL (https://youtube.com/watch?v=...)",
		KeyGetInfo:           "Get info",
		KeyDownload:          "Download",
		KeyAddToQueue:        "Add to queue",
		KeyQualityPreset:     "Quality Preset",
		KeyQualityBest:       "Best",
		KeyQualityMedium:     "Medium (480p)",
		KeyQualityAudio:      "Audio only",
		KeyCompress:          "Compress",
		KeyFormats:           "Formats",
		KeyResolutions:       "Resolutions",
		KeyDuration:          "Duration",
		KeySize:              "Size",
		KeyDescription:       "Description",
		KeyPlaylist:          "Playlist",
		KeyTasks:             "Downloads",
		KeyStop:              "Stop",
		KeyRemove:            "Remove",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyLoading:           "Loading...",
		KeyPleaseEnterURL:    "Please enter a URL",
		KeyAlreadyInQueue:    "Already in queue",
		KeyTaskAdded:         "Task added to queue",
		KeyDownloadStarted:   "Download started",
		KeyDownloadCompleted: "Download completed",
		KeyErrorPrefix:       "Error",
	}

	// Russian texts
	l.texts["ru"] = map[string]string{
		KeyAppTitle:          "YT Загрузчик",
		KeyTagline:           "Вставьте ссылку на видео, посмотрите форматы и скачайте его.",
		KeyEnterURL:          "Введите URL YouTube (https://youtube.com/watch?v=...)",
		KeyGetInfo:           "Информация",
		KeyDownload:          "Скачать",
		KeyAddToQueue:        "В очередь",
		KeyQualityPreset:     "Предустановка качества",
		KeyQualityBest:       "Лучшее",
		KeyQualityMedium:     "Среднее (480p)",
		KeyQualityAudio:      "Только звук",
		KeyCompress:          "Сжать",
		KeyFormats:           "Форматы",
		KeyResolutions:       "Разрешения",
		KeyDuration:          "Длительность",
		KeySize:              "Размер",
		KeyDescription:       "Описание",
		KeyPlaylist:          "Плейлист",
		KeyTasks:             "Загрузки",
		KeyStop:              "Стоп",
		KeyRemove:            "Удалить",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyLoading:           "Загрузка...",
		KeyPleaseEnterURL:    "Пожалуйста, введите URL",
		KeyAlreadyInQueue:    "Уже в очереди",
		KeyTaskAdded:         "Задача добавлена в очередь",
		KeyDownloadStarted:   "Загрузка начата",
		KeyDownloadCompleted: "Загрузка завершена",
		KeyErrorPrefix:       "Ошибка",
	}

	// Portuguese texts
	l.texts["pt"] = map[string]string{
		KeyAppTitle:          "YT Downloader",
		KeyTagline:           "Cole o link de um vídeo, veja os formatos e baixe-o.",
		KeyEnterURL:          "Digite URL do YouTube (https://youtube.com/watch?v=...)",
		KeyGetInfo:           "Informações",
		KeyDownload:          "Baixar",
		KeyAddToQueue:        "Adicionar à fila",
		KeyQualityPreset:     "Predefinição de Qualidade",
		KeyQualityBest:       "Melhor",
		KeyQualityMedium:     "Média (480p)",
		KeyQualityAudio:      "Somente áudio",
		KeyCompress:          "Comprimir",
		KeyFormats:           "Formatos",
		KeyResolutions:       "Resoluções",
		KeyDuration:          "Duração",
		KeySize:              "Tamanho",
		KeyDescription:       "Descrição",
		KeyPlaylist:          "Playlist",
		KeyTasks:             "Downloads",
		KeyStop:              "Parar",
		KeyRemove:            "Remover",
		KeyFile:              "Arquivo",
		KeyLanguage:          "Idioma",
		KeyLoading:           "Carregando...",
		KeyPleaseEnterURL:    "Por favor, digite uma URL",
		KeyAlreadyInQueue:    "Já na fila",
		KeyTaskAdded:         "Tarefa adicionada à fila",
		KeyDownloadStarted:   "Download iniciado",
		KeyDownloadCompleted: "Download concluído",
		KeyErrorPrefix:       "Erro",
	}
}
