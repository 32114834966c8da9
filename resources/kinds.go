package resources

// Audio is an audio clip. Duration is in seconds.
type Audio struct {
	BinaryContentResource
	Duration float64 `json:"duration,omitempty"`
}

// Data is an arbitrary binary file.
type Data struct {
	BinaryContentResource
}

// Photo is an image with an optional caption.
type Photo struct {
	BinaryContentResource
	Caption string `json:"caption,omitempty"`
}

// Text is a text story. It has no blob; the body travels in Content.
type Text struct {
	ContentResource
	Content string `json:"content,omitempty"`
}

// Video is a video clip. Duration is in seconds.
type Video struct {
	BinaryContentResource
	Duration float64 `json:"duration,omitempty"`
}

type (
	AudioManager = BinaryContentManager[Audio, *Audio]
	DataManager  = BinaryContentManager[Data, *Data]
	PhotoManager = BinaryContentManager[Photo, *Photo]
	TextManager  = ContentManager[Text, *Text]
	VideoManager = BinaryContentManager[Video, *Video]
)

func withFields(extra ...flattenField) []flattenField {
	fields := make([]flattenField, 0, len(baseFlattenFields)+len(extra))
	fields = append(fields, baseFlattenFields...)
	return append(fields, extra...)
}

var (
	audioKind = kindSpec{name: "Audio", urlbit: "audio", fields: withFields(flattenField{"duration", plainField})}
	dataKind  = kindSpec{name: "Data", urlbit: "data", fields: withFields()}
	photoKind = kindSpec{name: "Photo", urlbit: "photo", fields: withFields(flattenField{"caption", plainField})}
	textKind  = kindSpec{name: "Text", urlbit: "text", fields: withFields(flattenField{"content", plainField})}
	videoKind = kindSpec{name: "Video", urlbit: "video", fields: withFields(flattenField{"duration", plainField})}
)

func NewAudioManager(api API) *AudioManager {
	return newBinaryContentManager[Audio, *Audio](api, audioKind)
}

func NewDataManager(api API) *DataManager {
	return newBinaryContentManager[Data, *Data](api, dataKind)
}

func NewPhotoManager(api API) *PhotoManager {
	return newBinaryContentManager[Photo, *Photo](api, photoKind)
}

func NewTextManager(api API) *TextManager {
	return newContentManager[Text, *Text](api, textKind)
}

func NewVideoManager(api API) *VideoManager {
	return newBinaryContentManager[Video, *Video](api, videoKind)
}
