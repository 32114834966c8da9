/*
Package storymarket provides a typed client for the Storymarket content REST API.

Content of each kind (audio, data, photo, text, video) is exposed through a
manager on the Storymarket client supporting All, Get, Create, Update and
Delete, plus UploadBlob for binary kinds. Every call has a WithContext variant.

	client, err := storymarket.NewStorymarket(&storymarket.Config{ApiKey: key})
	if err != nil {
		return err
	}
	clip, err := client.Audio.Create(storymarket.Params{
		"title":    "Clip",
		"duration": 30,
		"tags":     []string{"news", "city"},
	})

Relations of a loaded resource (Author, Category, Org, PricingScheme,
RightsScheme, UploadedBy) are built from the embedded data of the last fetch
and never trigger a request.
*/
package storymarket
