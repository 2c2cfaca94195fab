/*
Copyright © 2024-2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package inference

// Request is the Hugging Face Inference API text-to-image payload.
type Request struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
}

type Parameters struct {
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"` // Number of denoising steps
	GuidanceScale     float64 `json:"guidance_scale,omitempty"`      // How closely the image follows the prompt
	Width             int     `json:"width,omitempty"`               // Width of the generated image in pixels
	Height            int     `json:"height,omitempty"`              // Height of the generated image in pixels
}

// DefaultParameters mirror the settings every generation is sent with.
var DefaultParameters = Parameters{
	NumInferenceSteps: 50,
	GuidanceScale:     7.5,
	Width:             512,
	Height:            512,
}

type errorResponse struct {
	Error         any     `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// Model is one entry of the model catalog.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var catalog = []Model{
	{ID: "stabilityai/stable-diffusion-2-1", Name: "Stable Diffusion 2.1", Description: "High-quality general purpose model"},
	{ID: "runwayml/stable-diffusion-v1-5", Name: "Stable Diffusion 1.5", Description: "Classic stable diffusion model"},
	{ID: "CompVis/stable-diffusion-v1-4", Name: "Stable Diffusion 1.4", Description: "Original stable diffusion model"},
	{ID: "prompthero/openjourney", Name: "OpenJourney", Description: "Midjourney-style artistic model"},
	{ID: "wavymulder/Analog-Diffusion", Name: "Analog Diffusion", Description: "Analog photography style"},
	{ID: "hakurei/waifu-diffusion", Name: "Waifu Diffusion", Description: "Anime and manga style images"},
	{ID: "nitrosocke/Arcane-Diffusion", Name: "Arcane Diffusion", Description: "Arcane TV series art style"},
	{ID: "dreamlike-art/dreamlike-diffusion-1.0", Name: "Dreamlike Diffusion", Description: "Dreamy, artistic style"},
	{ID: "prompthero/midjourney-v4-diffusion", Name: "Midjourney v4", Description: "High-quality artistic generation"},
	{ID: "nitrosocke/redshift-diffusion", Name: "Redshift Diffusion", Description: "3D rendered style images"},
	{ID: "wavymulder/portraitplus", Name: "Portrait Plus", Description: "Professional portrait photography"},
	{ID: "dallinmackay/Van-Gogh-diffusion", Name: "Van Gogh Diffusion", Description: "Van Gogh painting style"},
	{ID: "nitrosocke/spider-verse-diffusion", Name: "Spider-Verse", Description: "Spider-Man animated movie style"},
	{ID: "wavymulder/collage-diffusion", Name: "Collage Diffusion", Description: "Collage art style"},
	{ID: "stabilityai/stable-diffusion-xl-base-1.0", Name: "Stable Diffusion XL", Description: "Latest high-resolution model"},
}

// Models returns the text-to-image models offered to clients.
func Models() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	return out
}
