package service

import "github.com/sunflower-post/backend/internal/model"

// promptLibrary is the offline fallback for reflection prompts. Every list
// holds at least maxPrompts entries.
var promptLibrary = map[string][]string{
	"": {
		"What is taking up the most room in your mind right now?",
		"What is one small thing that went better than expected today?",
		"If a friend wrote this entry, what would you want to tell them?",
		"What do you need more of this week, and what do you need less of?",
		"Which moment today would you like to remember a year from now?",
	},
	model.MoodGreat: {
		"What made today feel this good, and how could you invite more of it?",
		"Who shared in this good feeling, or who would you like to tell about it?",
		"What did you do that helped create this moment?",
		"How does your body feel when you are this happy? Describe it.",
		"What would you like to say to your future self on a harder day?",
	},
	model.MoodGood: {
		"What is one thing you are grateful for right now?",
		"What small habit is quietly helping you lately?",
		"Which part of today felt most like you?",
		"What are you looking forward to in the next few days?",
		"Who made your day a little lighter?",
	},
	model.MoodOkay: {
		"What would move today from okay to good, even a little?",
		"What is one thing you handled well today, however small?",
		"Is there something you have been putting off? What is the first tiny step?",
		"What do you wish someone had asked you today?",
		"Describe where you are right now using all five senses.",
	},
	model.MoodLow: {
		"What is weighing on you most, and is any part of it within your control?",
		"What has helped you through a low day before?",
		"Who could you reach out to, even with a short message?",
		"What is one kind thing you can do for yourself in the next hour?",
		"If this feeling could speak, what would it say it needs?",
	},
	model.MoodRough: {
		"You showed up to write this. What would help you get through the rest of today?",
		"What is the hardest part of right now? Name it as plainly as you can.",
		"Who or what has felt safe for you recently?",
		"What is one very small thing that could make the next hour easier?",
		"What would you say to someone you love who felt exactly like this?",
	},
}

func libraryFor(mood string) []string {
	if p, ok := promptLibrary[mood]; ok {
		return p
	}
	return promptLibrary[""]
}
